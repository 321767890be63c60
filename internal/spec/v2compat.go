package spec

import "strings"

var v2Methods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "options": true, "head": true,
}

// fixV2Bodies rewrites Swagger 2 operations that openapi2conv cannot convert
// faithfully, in place:
//   - several body parameters are merged into one object body named "body"
//     with a property per original parameter;
//   - body parameters mixed with formData become formData fields and the
//     operation consumes multipart/form-data.
//
// It reports whether anything changed. doc must already have string keys.
func fixV2Bodies(doc map[string]any) bool {
	paths, _ := doc["paths"].(map[string]any)
	changed := false
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for method, raw := range ops {
			if !v2Methods[strings.ToLower(method)] {
				continue
			}
			op, _ := raw.(map[string]any)
			if op == nil {
				continue
			}
			if fixOperationBodies(op) {
				changed = true
			}
		}
	}
	return changed
}

func fixOperationBodies(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	bodies, formData := 0, false
	for _, p := range params {
		switch paramIn(p) {
		case "body":
			bodies++
		case "formdata":
			formData = true
		}
	}

	switch {
	case bodies == 0:
		return false
	case formData:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) == "body" {
				out = append(out, bodyAsFormData(p.(map[string]any)))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case bodies > 1:
		props := map[string]any{}
		var required []any
		rest := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) != "body" {
				rest = append(rest, p)
				continue
			}
			pm := p.(map[string]any)
			name := stringOr(pm["name"], "field")
			props[name] = paramSchema(pm)
			if req, _ := pm["required"].(bool); req {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		merged := map[string]any{"in": "body", "name": "body", "schema": schema}
		if len(required) > 0 {
			merged["required"] = true
		}
		op["parameters"] = append([]any{merged}, rest...)
		return true
	default:
		return false
	}
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	if pm == nil {
		return ""
	}
	return strings.ToLower(stringOr(pm["in"], ""))
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// paramSchema returns the schema of a body parameter, synthesizing one from
// type/items/format when the parameter has none.
func paramSchema(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	out := map[string]any{"type": stringOr(pm["type"], "string")}
	if items, ok := pm["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := stringOr(pm["format"], ""); f != "" {
		out["format"] = f
	}
	return out
}

func bodyAsFormData(pm map[string]any) map[string]any {
	out := map[string]any{
		"in":   "formData",
		"name": stringOr(pm["name"], "field"),
	}
	if d := stringOr(pm["description"], ""); d != "" {
		out["description"] = d
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	src := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		src = sch
	}
	// formData cannot carry a $ref; those degrade to string.
	out["type"] = stringOr(src["type"], "string")
	if items, ok := src["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := stringOr(src["format"], ""); f != "" {
		out["format"] = f
	}
	return out
}
