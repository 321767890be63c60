package spec

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/conjure-postman/internal/conjure"
)

const defaultServiceName = "default"

// FromOpenAPI maps an OpenAPI v3 document onto the Conjure model so the
// collection generator can treat both inputs alike:
//   - component schemas become object, enum, union or alias definitions;
//   - inline objects, enums and unions get synthesized names;
//   - operations are grouped into services by their first tag;
//   - path, query and header parameters become arguments, the request body
//     becomes a "body" argument (BINARY for non-JSON media).
func FromOpenAPI(doc *openapi3.T) (*conjure.Definition, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	c := &converter{
		defs:    map[string]conjure.TypeDefinition{},
		sources: map[string]*openapi3.Schema{},
	}

	if doc.Components.Schemas != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.defineComponent(name, doc.Components.Schemas[name])
		}
	}

	services := map[string]*conjure.ServiceDefinition{}
	var serviceOrder []string
	service := func(tag string) *conjure.ServiceDefinition {
		if svc, ok := services[tag]; ok {
			return svc
		}
		svc := &conjure.ServiceDefinition{Name: conjure.TypeName{Name: tag}}
		services[tag] = svc
		serviceOrder = append(serviceOrder, tag)
		return svc
	}
	// Declared tags first, in document order, so folder order follows the author.
	for _, t := range doc.Tags {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		service(strings.TrimSpace(t.Name)).Docs = strings.TrimSpace(t.Description)
	}

	if doc.Paths != nil {
		paths := make([]string, 0, len(doc.Paths))
		for p := range doc.Paths {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			item := doc.Paths[p]
			if item == nil {
				continue
			}
			ops := []struct {
				m conjure.HttpMethod
				o *openapi3.Operation
			}{
				{conjure.GET, item.Get},
				{conjure.POST, item.Post},
				{conjure.PUT, item.Put},
				{conjure.DELETE, item.Delete},
				{conjure.PATCH, item.Patch},
				{"HEAD", item.Head},
				{"OPTIONS", item.Options},
			}
			for _, pair := range ops {
				if pair.o == nil {
					continue
				}
				ep := c.endpoint(p, pair.m, item.Parameters, pair.o)
				tag := defaultServiceName
				for _, t := range pair.o.Tags {
					if t = strings.TrimSpace(t); t != "" {
						tag = t
						break
					}
				}
				svc := service(tag)
				svc.Endpoints = append(svc.Endpoints, ep)
			}
		}
	}

	def := &conjure.Definition{Version: 1}
	for _, tag := range serviceOrder {
		if svc := services[tag]; len(svc.Endpoints) > 0 {
			def.Services = append(def.Services, *svc)
		}
	}
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def.Types = append(def.Types, c.defs[name])
	}
	return def, nil
}

type converter struct {
	defs map[string]conjure.TypeDefinition
	// schema each name was synthesized from, to reuse or disambiguate names
	sources map[string]*openapi3.Schema
}

func typeName(name string) conjure.TypeName { return conjure.TypeName{Name: name} }

// refName returns the last segment of a $ref such as
// "#/components/schemas/Pet" or "common.yaml#/components/schemas/Pet".
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func (c *converter) defineComponent(name string, ref *openapi3.SchemaRef) {
	if ref == nil {
		return
	}
	if ref.Ref != "" {
		// a component that is only a $ref is an alias of its target
		c.defs[name] = conjure.AliasDefinition{Name: typeName(name), Alias: c.typeOf(ref, name)}
		c.sources[name] = ref.Value
		return
	}
	c.define(name, ref.Value)
}

// define registers a definition for s under name unless one already exists.
// The placeholder entry written first breaks reference cycles.
func (c *converter) define(name string, s *openapi3.Schema) conjure.TypeName {
	if _, ok := c.defs[name]; ok {
		return typeName(name)
	}
	c.sources[name] = s
	c.defs[name] = conjure.ObjectDefinition{Name: typeName(name)}
	c.defs[name] = c.definition(name, s)
	return typeName(name)
}

// inline picks a free name for a synthesized definition derived from hint.
func (c *converter) inline(hint string, s *openapi3.Schema) conjure.TypeName {
	name := exportName(hint)
	for i := 2; ; i++ {
		src, taken := c.sources[name]
		if !taken {
			return c.define(name, s)
		}
		if src == s {
			return typeName(name)
		}
		name = fmt.Sprintf("%s%d", exportName(hint), i)
	}
}

func (c *converter) definition(name string, s *openapi3.Schema) conjure.TypeDefinition {
	tn := typeName(name)
	if s == nil {
		return conjure.AliasDefinition{Name: tn, Alias: conjure.Primitive(conjure.ANY)}
	}
	docs := strings.TrimSpace(s.Description)
	switch {
	case len(s.Enum) > 0 && (s.Type == "" || s.Type == "string"):
		values := make([]conjure.EnumValue, 0, len(s.Enum))
		for _, v := range s.Enum {
			values = append(values, conjure.EnumValue{Value: fmt.Sprint(v)})
		}
		return conjure.EnumDefinition{Name: tn, Values: values, Docs: docs}
	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		variants := s.OneOf
		if len(variants) == 0 {
			variants = s.AnyOf
		}
		union := make([]conjure.FieldDefinition, 0, len(variants))
		for i, v := range variants {
			vname := fmt.Sprintf("option%d", i+1)
			if v != nil && v.Ref != "" {
				vname = lowerFirst(refName(v.Ref))
			}
			union = append(union, conjure.FieldDefinition{Name: vname, Type: c.typeOf(v, name+exportName(vname))})
		}
		return conjure.UnionDefinition{Name: tn, Union: union, Docs: docs}
	case len(s.AllOf) > 0 || len(s.Properties) > 0:
		return conjure.ObjectDefinition{Name: tn, Fields: c.fields(name, s), Docs: docs}
	default:
		return conjure.AliasDefinition{Name: tn, Alias: c.valueType(s, name), Docs: docs}
	}
}

// fields flattens allOf parts and the schema's own properties. Properties are
// sorted by name since OpenAPI carries them as a map.
func (c *converter) fields(owner string, s *openapi3.Schema) []conjure.FieldDefinition {
	var out []conjure.FieldDefinition
	seen := map[string]int{}
	add := func(f conjure.FieldDefinition) {
		if i, ok := seen[f.Name]; ok {
			out[i] = f
			return
		}
		seen[f.Name] = len(out)
		out = append(out, f)
	}
	for _, part := range s.AllOf {
		if part == nil || part.Value == nil {
			continue
		}
		for _, f := range c.fields(owner, part.Value) {
			add(f)
		}
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		prop := s.Properties[name]
		t := c.typeOf(prop, owner+exportName(name))
		if !required[name] {
			t = optional(t)
		}
		var docs string
		if prop != nil && prop.Value != nil {
			docs = strings.TrimSpace(prop.Value.Description)
		}
		add(conjure.FieldDefinition{Name: name, Type: t, Docs: docs})
	}
	return out
}

// typeOf converts a schema reference to a Conjure type, synthesizing named
// definitions under hint for inline objects, enums and unions.
func (c *converter) typeOf(ref *openapi3.SchemaRef, hint string) conjure.Type {
	if ref == nil {
		return conjure.Primitive(conjure.ANY)
	}
	if ref.Ref != "" {
		name := refName(ref.Ref)
		if _, ok := c.defs[name]; !ok && ref.Value != nil {
			c.define(name, ref.Value)
		}
		return conjure.Reference(typeName(name))
	}
	s := ref.Value
	if s == nil {
		return conjure.Primitive(conjure.ANY)
	}
	var t conjure.Type
	switch {
	case len(s.Enum) > 0 && (s.Type == "" || s.Type == "string"),
		len(s.OneOf) > 0, len(s.AnyOf) > 0, len(s.AllOf) > 0, len(s.Properties) > 0:
		t = conjure.Reference(c.inline(hint, s))
	default:
		t = c.valueType(s, hint)
	}
	if s.Nullable {
		t = optional(t)
	}
	return t
}

// valueType handles schemas that do not need a named definition.
func (c *converter) valueType(s *openapi3.Schema, hint string) conjure.Type {
	switch s.Type {
	case "string":
		switch s.Format {
		case "date-time":
			return conjure.Primitive(conjure.DATETIME)
		case "uuid":
			return conjure.Primitive(conjure.UUID)
		case "binary":
			return conjure.Primitive(conjure.BINARY)
		default:
			return conjure.Primitive(conjure.STRING)
		}
	case "integer":
		if s.Format == "int64" {
			return conjure.Primitive(conjure.SAFELONG)
		}
		return conjure.Primitive(conjure.INTEGER)
	case "number":
		return conjure.Primitive(conjure.DOUBLE)
	case "boolean":
		return conjure.Primitive(conjure.BOOLEAN)
	case "array":
		item := c.typeOf(s.Items, hint+"Item")
		if s.UniqueItems {
			return conjure.Set(item)
		}
		return conjure.List(item)
	case "object":
		if ap := s.AdditionalProperties.Schema; ap != nil {
			return conjure.Map(conjure.Primitive(conjure.STRING), c.typeOf(ap, hint+"Value"))
		}
		if has := s.AdditionalProperties.Has; has != nil && *has {
			return conjure.Map(conjure.Primitive(conjure.STRING), conjure.Primitive(conjure.ANY))
		}
		return conjure.Primitive(conjure.ANY)
	default:
		return conjure.Primitive(conjure.ANY)
	}
}

func optional(t conjure.Type) conjure.Type {
	if _, ok := t.(conjure.OptionalType); ok {
		return t
	}
	return conjure.Optional(t)
}

func (c *converter) endpoint(path string, method conjure.HttpMethod, shared openapi3.Parameters, op *openapi3.Operation) conjure.EndpointDefinition {
	name := strings.TrimSpace(op.OperationID)
	if name == "" {
		name = operationName(method, path)
	}
	ep := conjure.EndpointDefinition{
		Name:       name,
		HttpMethod: method,
		HttpPath:   path,
		Docs:       joinDocs(op.Summary, op.Description),
	}
	if op.Deprecated {
		msg := "Marked deprecated in the OpenAPI document."
		ep.Deprecated = &msg
	}

	// Path-level parameters first; operation-level ones replace them in place.
	var params []*openapi3.Parameter
	index := map[string]int{}
	for _, list := range []openapi3.Parameters{shared, op.Parameters} {
		for _, pref := range list {
			if pref == nil || pref.Value == nil {
				continue
			}
			key := pref.Value.In + ":" + pref.Value.Name
			if i, ok := index[key]; ok {
				params[i] = pref.Value
				continue
			}
			index[key] = len(params)
			params = append(params, pref.Value)
		}
	}
	for _, p := range params {
		var pt conjure.ParameterType
		switch p.In {
		case openapi3.ParameterInPath:
			pt = conjure.PathParameter{}
		case openapi3.ParameterInQuery:
			pt = conjure.QueryParameter{ParamID: p.Name}
		case openapi3.ParameterInHeader:
			pt = conjure.HeaderParameter{ParamID: p.Name}
		default:
			pt = conjure.UnknownParameter{Tag: p.In}
		}
		t := c.typeOf(p.Schema, name+exportName(p.Name))
		if !p.Required && p.In != openapi3.ParameterInPath {
			t = optional(t)
		}
		ep.Args = append(ep.Args, conjure.ArgumentDefinition{
			Name:      p.Name,
			Type:      t,
			ParamType: pt,
			Docs:      strings.TrimSpace(p.Description),
		})
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		rb := op.RequestBody.Value
		if t, ok := c.contentType(rb.Content, name+"Request"); ok {
			if _, binary := t.(conjure.PrimitiveType); !rb.Required && !binary {
				t = optional(t)
			}
			ep.Args = append(ep.Args, conjure.ArgumentDefinition{
				Name:      "body",
				Type:      t,
				ParamType: conjure.BodyParameter{},
				Docs:      strings.TrimSpace(rb.Description),
			})
		}
	}

	for _, code := range []string{"200", "201", "202"} {
		rref := op.Responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		if t, ok := c.contentType(rref.Value.Content, name+"Response"); ok {
			ep.Returns = t
			break
		}
	}
	return ep
}

// contentType prefers JSON media; any other media type is sent as a file.
func (c *converter) contentType(content openapi3.Content, hint string) (conjure.Type, bool) {
	if len(content) == 0 {
		return nil, false
	}
	mimes := make([]string, 0, len(content))
	for m := range content {
		mimes = append(mimes, m)
	}
	sort.Strings(mimes)
	for _, m := range mimes {
		if m == "application/json" || strings.HasSuffix(m, "+json") {
			if mt := content[m]; mt != nil {
				return c.typeOf(mt.Schema, hint), true
			}
		}
	}
	return conjure.Primitive(conjure.BINARY), true
}

func joinDocs(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

// operationName derives a lowerCamel name such as getPetsById from
// "GET /pets/{id}".
func operationName(method conjure.HttpMethod, path string) string {
	words := []string{strings.ToLower(string(method))}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			words = append(words, "by", strings.Trim(seg, "{}"))
			continue
		}
		words = append(words, seg)
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(exportName(w))
	}
	return b.String()
}

// exportName upper-cases the first letter of every word and drops
// separators: "pet-owner_id" becomes "PetOwnerId".
func exportName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
