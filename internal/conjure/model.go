package conjure

// Conjure intermediate representation consumed by the generators.
//
// Type, TypeDefinition and ParameterType are closed sums: each is an interface
// with an unexported marker method so only the variants in this package can
// satisfy it. Consumers switch on the concrete type.

// TypeName identifies a named type. Name+Package is unique within a Definition.
type TypeName struct {
	Name    string
	Package string
}

func (n TypeName) String() string {
	if n.Package == "" {
		return n.Name
	}
	return n.Package + "." + n.Name
}

// PrimitiveKind is the upper-case Conjure primitive name.
type PrimitiveKind string

const (
	STRING      PrimitiveKind = "STRING"
	DATETIME    PrimitiveKind = "DATETIME"
	INTEGER     PrimitiveKind = "INTEGER"
	DOUBLE      PrimitiveKind = "DOUBLE"
	SAFELONG    PrimitiveKind = "SAFELONG"
	BINARY      PrimitiveKind = "BINARY"
	ANY         PrimitiveKind = "ANY"
	BOOLEAN     PrimitiveKind = "BOOLEAN"
	UUID        PrimitiveKind = "UUID"
	RID         PrimitiveKind = "RID"
	BEARERTOKEN PrimitiveKind = "BEARERTOKEN"
)

// Type is one of PrimitiveType, OptionalType, ListType, SetType, MapType,
// ReferenceType, ExternalType or UnknownType.
type Type interface {
	isType()
}

type PrimitiveType struct{ Kind PrimitiveKind }

type OptionalType struct{ ItemType Type }

type ListType struct{ ItemType Type }

type SetType struct{ ItemType Type }

type MapType struct {
	KeyType   Type
	ValueType Type
}

type ReferenceType struct{ Name TypeName }

// ExternalType is opaque to the generators; Fallback is informational only.
type ExternalType struct {
	Ref      TypeName
	Fallback Type
}

// UnknownType carries the wire tag of a variant this build does not know.
type UnknownType struct{ Tag string }

func (PrimitiveType) isType() {}
func (OptionalType) isType()  {}
func (ListType) isType()      {}
func (SetType) isType()       {}
func (MapType) isType()       {}
func (ReferenceType) isType() {}
func (ExternalType) isType()  {}
func (UnknownType) isType()   {}

// Convenience constructors, mostly for tests and the OpenAPI importer.
func Primitive(kind PrimitiveKind) Type { return PrimitiveType{Kind: kind} }
func Optional(item Type) Type           { return OptionalType{ItemType: item} }
func List(item Type) Type               { return ListType{ItemType: item} }
func Set(item Type) Type                { return SetType{ItemType: item} }
func Map(key, value Type) Type          { return MapType{KeyType: key, ValueType: value} }
func Reference(name TypeName) Type      { return ReferenceType{Name: name} }

// FieldDefinition is an object field or a union variant.
type FieldDefinition struct {
	Name string
	Type Type
	Docs string
}

// EnumValue is a single enum member.
type EnumValue struct {
	Value string
	Docs  string
}

// TypeDefinition is one of AliasDefinition, EnumDefinition, ObjectDefinition,
// UnionDefinition or UnknownDefinition.
type TypeDefinition interface {
	TypeName() TypeName
	isTypeDefinition()
}

type AliasDefinition struct {
	Name  TypeName
	Alias Type
	Docs  string
}

type EnumDefinition struct {
	Name   TypeName
	Values []EnumValue
	Docs   string
}

type ObjectDefinition struct {
	Name   TypeName
	Fields []FieldDefinition
	Docs   string
}

type UnionDefinition struct {
	Name  TypeName
	Union []FieldDefinition
	Docs  string
}

// UnknownDefinition keeps the name so the catalog can still index it.
type UnknownDefinition struct {
	Name TypeName
	Tag  string
}

func (d AliasDefinition) TypeName() TypeName   { return d.Name }
func (d EnumDefinition) TypeName() TypeName    { return d.Name }
func (d ObjectDefinition) TypeName() TypeName  { return d.Name }
func (d UnionDefinition) TypeName() TypeName   { return d.Name }
func (d UnknownDefinition) TypeName() TypeName { return d.Name }

func (AliasDefinition) isTypeDefinition()   {}
func (EnumDefinition) isTypeDefinition()    {}
func (ObjectDefinition) isTypeDefinition()  {}
func (UnionDefinition) isTypeDefinition()   {}
func (UnknownDefinition) isTypeDefinition() {}

// ParameterType says where an endpoint argument travels on the wire.
type ParameterType interface {
	isParameterType()
}

type BodyParameter struct{}

type HeaderParameter struct{ ParamID string }

type PathParameter struct{}

type QueryParameter struct{ ParamID string }

type UnknownParameter struct{ Tag string }

func (BodyParameter) isParameterType()    {}
func (HeaderParameter) isParameterType()  {}
func (PathParameter) isParameterType()    {}
func (QueryParameter) isParameterType()   {}
func (UnknownParameter) isParameterType() {}

type HttpMethod string

const (
	GET    HttpMethod = "GET"
	POST   HttpMethod = "POST"
	PUT    HttpMethod = "PUT"
	DELETE HttpMethod = "DELETE"
	PATCH  HttpMethod = "PATCH"
)

type ArgumentDefinition struct {
	Name      string
	Type      Type
	ParamType ParameterType
	Docs      string
}

type EndpointDefinition struct {
	Name       string
	HttpMethod HttpMethod
	HttpPath   string
	Args       []ArgumentDefinition
	Returns    Type // nil when the endpoint returns nothing
	Docs       string
	Deprecated *string // non-nil marks the endpoint deprecated, even when empty
}

type ServiceDefinition struct {
	Name      TypeName
	Endpoints []EndpointDefinition
	Docs      string
}

// Definition is a whole Conjure IR document.
type Definition struct {
	Version  int
	Types    []TypeDefinition
	Services []ServiceDefinition
}
