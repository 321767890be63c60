// Package example synthesizes placeholder JSON values that show what a valid
// instance of a Conjure type looks like.
package example

import (
	"strings"

	"github.com/mark3labs/conjure-postman/internal/conjure"
)

const unknownLeaf = Leaf("{{UNKNOWN}}")

// Render builds an example value for t. Named references resolve through
// catalog; a reference that is not in the catalog aborts with a
// SchemaConsistencyError. Self-referential aliases, objects and unions
// terminate with a {{Name}} leaf at the point of recursion.
//
// Each call owns its own recursion guard, so concurrent Render calls may
// share one catalog.
func Render(t conjure.Type, catalog *conjure.Catalog) (Value, error) {
	r := &renderer{catalog: catalog}
	return r.render(t)
}

type renderer struct {
	catalog *conjure.Catalog
	// names of aliases/objects/unions currently being expanded, outermost first
	stack []conjure.TypeName
}

func (r *renderer) render(t conjure.Type) (Value, error) {
	switch v := t.(type) {
	case conjure.PrimitiveType:
		return Leaf("{{" + strings.ToUpper(string(v.Kind)) + "}}"), nil
	case conjure.OptionalType:
		inner, err := r.render(v.ItemType)
		if err != nil {
			return nil, err
		}
		if leaf, ok := inner.(Leaf); ok {
			return Leaf("{{ Optional<" + bare(leaf) + "> }}"), nil
		}
		return inner, nil
	case conjure.ListType:
		item, err := r.render(v.ItemType)
		if err != nil {
			return nil, err
		}
		return Array{item}, nil
	case conjure.SetType:
		item, err := r.render(v.ItemType)
		if err != nil {
			return nil, err
		}
		return Array{item}, nil
	case conjure.MapType:
		keyValue, err := r.render(v.KeyType)
		if err != nil {
			return nil, err
		}
		// Composite keys cannot be shown as a JSON key; use the literal {{KEY}}.
		key := "{{KEY}}"
		if leaf, ok := keyValue.(Leaf); ok {
			key = strings.ReplaceAll(string(leaf), `"`, "")
		}
		value, err := r.render(v.ValueType)
		if err != nil {
			return nil, err
		}
		return NewObject().Set(key, value), nil
	case conjure.ReferenceType:
		def, err := r.catalog.Resolve(v.Name)
		if err != nil {
			return nil, err
		}
		return r.renderDefinition(def)
	case conjure.ExternalType:
		return Leaf("{{" + v.Ref.Name + "}}"), nil
	default:
		return unknownLeaf, nil
	}
}

func (r *renderer) renderDefinition(def conjure.TypeDefinition) (Value, error) {
	switch d := def.(type) {
	case conjure.AliasDefinition:
		// Tree = List<Tree> renders as [ "{{Tree}}" ].
		if r.inProgress(d.Name) {
			return Leaf("{{" + d.Name.Name + "}}"), nil
		}
		defer r.enter(d.Name)()
		inner, err := r.render(d.Alias)
		if err != nil {
			return nil, err
		}
		if leaf, ok := inner.(Leaf); ok {
			return Leaf("{{ " + d.Name.Name + "(" + bare(leaf) + ") }}"), nil
		}
		return inner, nil
	case conjure.EnumDefinition:
		values := make([]string, 0, len(d.Values))
		for _, ev := range d.Values {
			values = append(values, ev.Value)
		}
		return Leaf(strings.Join(values, "|")), nil
	case conjure.ObjectDefinition:
		if r.inProgress(d.Name) {
			return Leaf("{{" + d.Name.Name + "}}"), nil
		}
		defer r.enter(d.Name)()
		obj := NewObject()
		for _, f := range d.Fields {
			fv, err := r.render(f.Type)
			if err != nil {
				return nil, err
			}
			obj.Set(f.Name, fv)
		}
		return obj, nil
	case conjure.UnionDefinition:
		if len(d.Union) == 0 {
			return Null{}, nil
		}
		if r.inProgress(d.Name) {
			return Leaf("{{" + d.Name.Name + "}}"), nil
		}
		defer r.enter(d.Name)()
		names := make([]string, 0, len(d.Union))
		variants := NewObject()
		for _, f := range d.Union {
			names = append(names, f.Name)
			fv, err := r.render(f.Type)
			if err != nil {
				return nil, err
			}
			variants.Set(f.Name, fv)
		}
		return NewObject().
			Set("type", Leaf(strings.Join(names, "|"))).
			Set("oneOf", variants), nil
	default:
		return unknownLeaf, nil
	}
}

func (r *renderer) inProgress(name conjure.TypeName) bool {
	for _, n := range r.stack {
		if n == name {
			return true
		}
	}
	return false
}

// enter pushes name and returns the matching pop; callers defer it so the
// guard unwinds on every return path.
func (r *renderer) enter(name conjure.TypeName) func() {
	r.stack = append(r.stack, name)
	depth := len(r.stack)
	return func() {
		r.stack = r.stack[:depth-1]
	}
}

// bare strips quotes and braces from a leaf so it can be rewrapped.
func bare(l Leaf) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '{', '}':
			return -1
		}
		return r
	}, string(l))
}
