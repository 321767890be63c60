package conjure

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wire shapes of the IR document. Union-typed members are captured as raw
// nodes and converted by the decode* helpers below, keyed on the "type" tag.

type wireTypeName struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package"`
}

func (w wireTypeName) typeName() TypeName { return TypeName{Name: w.Name, Package: w.Package} }

type wireDefinition struct {
	Version  int           `yaml:"version"`
	Types    []yaml.Node   `yaml:"types"`
	Services []wireService `yaml:"services"`
}

type wireService struct {
	ServiceName wireTypeName   `yaml:"serviceName"`
	Endpoints   []wireEndpoint `yaml:"endpoints"`
	Docs        string         `yaml:"docs"`
}

type wireEndpoint struct {
	EndpointName string         `yaml:"endpointName"`
	HttpMethod   string         `yaml:"httpMethod"`
	HttpPath     string         `yaml:"httpPath"`
	Args         []wireArgument `yaml:"args"`
	Returns      yaml.Node      `yaml:"returns"`
	Docs         string         `yaml:"docs"`
	Deprecated   *string        `yaml:"deprecated"`
}

type wireArgument struct {
	ArgName   string    `yaml:"argName"`
	Type      yaml.Node `yaml:"type"`
	ParamType yaml.Node `yaml:"paramType"`
	Docs      string    `yaml:"docs"`
}

type wireField struct {
	FieldName string    `yaml:"fieldName"`
	Type      yaml.Node `yaml:"type"`
	Docs      string    `yaml:"docs"`
}

type wireEnumValue struct {
	Value string `yaml:"value"`
	Docs  string `yaml:"docs"`
}

// Decode parses a Conjure IR document. JSON input is accepted since it is a
// subset of YAML.
func Decode(data []byte) (*Definition, error) {
	var wire wireDefinition
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, &Error{Code: DecodeError, Message: "parse conjure definition", Cause: err}
	}

	def := &Definition{Version: wire.Version}
	for i := range wire.Types {
		td, err := decodeTypeDefinition(&wire.Types[i])
		if err != nil {
			return nil, &Error{Code: DecodeError, Message: fmt.Sprintf("types[%d]", i), Cause: err}
		}
		def.Types = append(def.Types, td)
	}
	for si, ws := range wire.Services {
		svc := ServiceDefinition{Name: ws.ServiceName.typeName(), Docs: ws.Docs}
		for ei, we := range ws.Endpoints {
			ep, err := decodeEndpoint(we)
			if err != nil {
				return nil, &Error{
					Code:     DecodeError,
					Message:  fmt.Sprintf("services[%d].endpoints[%d]", si, ei),
					Service:  svc.Name.Name,
					Endpoint: we.EndpointName,
					Cause:    err,
				}
			}
			svc.Endpoints = append(svc.Endpoints, ep)
		}
		def.Services = append(def.Services, svc)
	}
	return def, nil
}

func decodeEndpoint(we wireEndpoint) (EndpointDefinition, error) {
	ep := EndpointDefinition{
		Name:       we.EndpointName,
		HttpMethod: HttpMethod(strings.ToUpper(strings.TrimSpace(we.HttpMethod))),
		HttpPath:   we.HttpPath,
		Docs:       we.Docs,
		Deprecated: we.Deprecated,
	}
	if present(&we.Returns) {
		t, err := decodeType(&we.Returns)
		if err != nil {
			return ep, fmt.Errorf("returns: %w", err)
		}
		ep.Returns = t
	}
	for _, wa := range we.Args {
		t, err := decodeType(&wa.Type)
		if err != nil {
			return ep, fmt.Errorf("arg %s: %w", wa.ArgName, err)
		}
		pt, err := decodeParameterType(&wa.ParamType)
		if err != nil {
			return ep, fmt.Errorf("arg %s: %w", wa.ArgName, err)
		}
		ep.Args = append(ep.Args, ArgumentDefinition{Name: wa.ArgName, Type: t, ParamType: pt, Docs: wa.Docs})
	}
	return ep, nil
}

func present(n *yaml.Node) bool {
	return n != nil && n.Kind != 0 && n.Tag != "!!null"
}

func decodeType(node *yaml.Node) (Type, error) {
	if !present(node) {
		return nil, fmt.Errorf("missing type")
	}
	var head struct {
		Type      string `yaml:"type"`
		Primitive string `yaml:"primitive"`
		Optional  struct {
			ItemType yaml.Node `yaml:"itemType"`
		} `yaml:"optional"`
		List struct {
			ItemType yaml.Node `yaml:"itemType"`
		} `yaml:"list"`
		Set struct {
			ItemType yaml.Node `yaml:"itemType"`
		} `yaml:"set"`
		Map struct {
			KeyType   yaml.Node `yaml:"keyType"`
			ValueType yaml.Node `yaml:"valueType"`
		} `yaml:"map"`
		Reference wireTypeName `yaml:"reference"`
		External  struct {
			ExternalReference wireTypeName `yaml:"externalReference"`
			Fallback          yaml.Node    `yaml:"fallback"`
		} `yaml:"external"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "primitive":
		return PrimitiveType{Kind: PrimitiveKind(strings.ToUpper(head.Primitive))}, nil
	case "optional":
		item, err := decodeType(&head.Optional.ItemType)
		if err != nil {
			return nil, fmt.Errorf("optional: %w", err)
		}
		return OptionalType{ItemType: item}, nil
	case "list":
		item, err := decodeType(&head.List.ItemType)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		return ListType{ItemType: item}, nil
	case "set":
		item, err := decodeType(&head.Set.ItemType)
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		return SetType{ItemType: item}, nil
	case "map":
		key, err := decodeType(&head.Map.KeyType)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		value, err := decodeType(&head.Map.ValueType)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		return MapType{KeyType: key, ValueType: value}, nil
	case "reference":
		if head.Reference.Name == "" {
			return nil, fmt.Errorf("reference: missing name")
		}
		return ReferenceType{Name: head.Reference.typeName()}, nil
	case "external":
		ext := ExternalType{Ref: head.External.ExternalReference.typeName()}
		if present(&head.External.Fallback) {
			fb, err := decodeType(&head.External.Fallback)
			if err != nil {
				return nil, fmt.Errorf("external fallback: %w", err)
			}
			ext.Fallback = fb
		}
		return ext, nil
	case "":
		return nil, fmt.Errorf("type: missing tag")
	default:
		return UnknownType{Tag: head.Type}, nil
	}
}

func decodeTypeDefinition(node *yaml.Node) (TypeDefinition, error) {
	var head struct {
		Type  string `yaml:"type"`
		Alias struct {
			TypeName wireTypeName `yaml:"typeName"`
			Alias    yaml.Node    `yaml:"alias"`
			Docs     string       `yaml:"docs"`
		} `yaml:"alias"`
		Enum struct {
			TypeName wireTypeName    `yaml:"typeName"`
			Values   []wireEnumValue `yaml:"values"`
			Docs     string          `yaml:"docs"`
		} `yaml:"enum"`
		Object struct {
			TypeName wireTypeName `yaml:"typeName"`
			Fields   []wireField  `yaml:"fields"`
			Docs     string       `yaml:"docs"`
		} `yaml:"object"`
		Union struct {
			TypeName wireTypeName `yaml:"typeName"`
			Union    []wireField  `yaml:"union"`
			Docs     string       `yaml:"docs"`
		} `yaml:"union"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "alias":
		inner, err := decodeType(&head.Alias.Alias)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", head.Alias.TypeName.Name, err)
		}
		return AliasDefinition{Name: head.Alias.TypeName.typeName(), Alias: inner, Docs: head.Alias.Docs}, nil
	case "enum":
		values := make([]EnumValue, 0, len(head.Enum.Values))
		for _, v := range head.Enum.Values {
			values = append(values, EnumValue{Value: v.Value, Docs: v.Docs})
		}
		return EnumDefinition{Name: head.Enum.TypeName.typeName(), Values: values, Docs: head.Enum.Docs}, nil
	case "object":
		fields, err := decodeFields(head.Object.Fields)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", head.Object.TypeName.Name, err)
		}
		return ObjectDefinition{Name: head.Object.TypeName.typeName(), Fields: fields, Docs: head.Object.Docs}, nil
	case "union":
		variants, err := decodeFields(head.Union.Union)
		if err != nil {
			return nil, fmt.Errorf("union %s: %w", head.Union.TypeName.Name, err)
		}
		return UnionDefinition{Name: head.Union.TypeName.typeName(), Union: variants, Docs: head.Union.Docs}, nil
	case "":
		return nil, fmt.Errorf("type definition: missing tag")
	default:
		// Keep whatever name the unknown variant carries so references to it
		// still resolve to something.
		var named struct {
			TypeName wireTypeName `yaml:"typeName"`
		}
		var body map[string]yaml.Node
		if err := node.Decode(&body); err == nil {
			if inner, ok := body[head.Type]; ok {
				_ = inner.Decode(&named)
			}
		}
		return UnknownDefinition{Name: named.TypeName.typeName(), Tag: head.Type}, nil
	}
}

func decodeFields(wf []wireField) ([]FieldDefinition, error) {
	fields := make([]FieldDefinition, 0, len(wf))
	for _, f := range wf {
		t, err := decodeType(&f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.FieldName, err)
		}
		fields = append(fields, FieldDefinition{Name: f.FieldName, Type: t, Docs: f.Docs})
	}
	return fields, nil
}

func decodeParameterType(node *yaml.Node) (ParameterType, error) {
	if !present(node) {
		return nil, fmt.Errorf("missing paramType")
	}
	var head struct {
		Type   string `yaml:"type"`
		Header struct {
			ParamID string `yaml:"paramId"`
		} `yaml:"header"`
		Query struct {
			ParamID string `yaml:"paramId"`
		} `yaml:"query"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}
	switch head.Type {
	case "body":
		return BodyParameter{}, nil
	case "header":
		return HeaderParameter{ParamID: head.Header.ParamID}, nil
	case "path":
		return PathParameter{}, nil
	case "query":
		return QueryParameter{ParamID: head.Query.ParamID}, nil
	default:
		return UnknownParameter{Tag: head.Type}, nil
	}
}
