package conjure

// Catalog is an immutable index of type definitions by name. Build one per
// generation run; it is safe for concurrent readers.
type Catalog struct {
	types map[TypeName]TypeDefinition
}

// NewCatalog indexes defs. Later duplicates replace earlier ones; the IR
// guarantees uniqueness so this only matters for hand-built inputs.
func NewCatalog(defs []TypeDefinition) *Catalog {
	types := make(map[TypeName]TypeDefinition, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		types[def.TypeName()] = def
	}
	return &Catalog{types: types}
}

// Lookup returns the definition registered under name.
func (c *Catalog) Lookup(name TypeName) (TypeDefinition, bool) {
	if c == nil {
		return nil, false
	}
	def, ok := c.types[name]
	return def, ok
}

// Resolve is Lookup that reports a missing name as a SchemaConsistencyError.
func (c *Catalog) Resolve(name TypeName) (TypeDefinition, error) {
	def, ok := c.Lookup(name)
	if !ok {
		return nil, &Error{
			Code:    SchemaConsistencyError,
			Message: "unresolved type reference " + name.String(),
			Type:    name.String(),
		}
	}
	return def, nil
}

// Len reports the number of indexed definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.types)
}
