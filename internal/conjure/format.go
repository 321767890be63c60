package conjure

import "fmt"

// FormatType renders t as a short human-readable name such as
// Optional<List<STRING>> or Map<STRING, Widget>. Aliases show their target:
// WidgetId(STRING). Unresolvable references and aliases that reach
// themselves fall back to the bare name.
func FormatType(t Type, catalog *Catalog) string {
	return formatType(t, catalog, nil)
}

// expanding lists the aliases on the current path.
func formatType(t Type, catalog *Catalog, expanding []TypeName) string {
	switch v := t.(type) {
	case PrimitiveType:
		return string(v.Kind)
	case OptionalType:
		return fmt.Sprintf("Optional<%s>", formatType(v.ItemType, catalog, expanding))
	case ListType:
		return fmt.Sprintf("List<%s>", formatType(v.ItemType, catalog, expanding))
	case SetType:
		return fmt.Sprintf("Set<%s>", formatType(v.ItemType, catalog, expanding))
	case MapType:
		return fmt.Sprintf("Map<%s, %s>", formatType(v.KeyType, catalog, expanding), formatType(v.ValueType, catalog, expanding))
	case ReferenceType:
		def, ok := catalog.Lookup(v.Name)
		if !ok {
			return v.Name.Name
		}
		switch d := def.(type) {
		case AliasDefinition:
			for _, n := range expanding {
				if n == d.Name {
					return d.Name.Name
				}
			}
			// full slice expression: sibling branches must not share a backing array
			inner := formatType(d.Alias, catalog, append(expanding[:len(expanding):len(expanding)], d.Name))
			return fmt.Sprintf("%s(%s)", d.Name.Name, inner)
		case EnumDefinition, ObjectDefinition, UnionDefinition:
			return d.TypeName().Name
		default:
			return "UNKNOWN"
		}
	case ExternalType:
		return v.Ref.Name
	default:
		return "UNKNOWN"
	}
}
