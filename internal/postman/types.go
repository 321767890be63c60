package postman

// Postman v2.1 collection document. Struct fields are declared in
// alphabetical order of their JSON names so the encoder emits keys
// alphabetically; downstream consumers diff generated files.

const (
	SchemaURI        = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	HostnameVariable = "{{HOSTNAME}}"
	PortVariable     = "{{PORT}}"
	AuthVariable     = "{{AUTH_TOKEN}}"
	ContentTypeJSON  = "application/json"
)

type Collection struct {
	Auth     Auth       `json:"auth"`
	Event    []Event    `json:"event"`
	Info     Info       `json:"info"`
	Item     []Folder   `json:"item"`
	Variable []Variable `json:"variable"`
}

type Info struct {
	PostmanID   string `json:"_postman_id"`
	Description string `json:"description,omitempty"`
	Name        string `json:"name"`
	Schema      string `json:"schema"`
	Version     string `json:"version"`
}

type Auth struct {
	Bearer []AuthParam `json:"bearer"`
	Type   string      `json:"type"`
}

type AuthParam struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// BearerAuth is the placeholder auth block; the token is a collection variable.
func BearerAuth() Auth {
	return Auth{
		Bearer: []AuthParam{{Key: "token", Type: "string", Value: AuthVariable}},
		Type:   "bearer",
	}
}

type Event struct {
	Disabled bool   `json:"disabled"`
	ID       string `json:"id"`
	Listen   string `json:"listen"`
	Script   Script `json:"script"`
}

type Script struct {
	Exec []string `json:"exec"`
	ID   string   `json:"id"`
	Type string   `json:"type"`
}

var (
	nonErrorStatusScript = []string{
		`pm.test("Request was successful", function () {`,
		`    pm.response.to.not.be.error;`,
		`});`,
	}
	responseIsJSONScript = []string{
		`pm.test("Response is valid json", function () {`,
		`    // assert that the response has a valid JSON body`,
		`    pm.response.to.be.json;`,
		`});`,
	}
)

// VariableType is the Postman variable value type.
type VariableType string

const (
	VariableAny     VariableType = "any"
	VariableBoolean VariableType = "boolean"
	VariableNumber  VariableType = "number"
	VariableString  VariableType = "string"
)

type Variable struct {
	Description string       `json:"description,omitempty"`
	ID          string       `json:"id"`
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Type        VariableType `json:"type"`
	Value       any          `json:"value"`
}

// Folder groups the requests of one service.
type Folder struct {
	Description string `json:"description,omitempty"`
	Item        []Item `json:"item"`
	Name        string `json:"name"`
}

// Item is the request description generated for one endpoint.
type Item struct {
	Description string  `json:"description,omitempty"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Request     Request `json:"request"`
}

type Request struct {
	Body        *Body    `json:"body,omitempty"`
	Description string   `json:"description,omitempty"`
	Header      []Header `json:"header"`
	Method      string   `json:"method"`
	URL         URL      `json:"url"`
}

type Header struct {
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled"`
	Key         string `json:"key"`
	Value       string `json:"value,omitempty"`
}

type URL struct {
	Host     string         `json:"host"`
	Path     []string       `json:"path"`
	Port     string         `json:"port"`
	Query    []QueryParam   `json:"query"`
	Raw      string         `json:"raw"`
	Variable []PathVariable `json:"variable"`
}

type QueryParam struct {
	Disabled bool   `json:"disabled"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

type PathVariable struct {
	Description string `json:"description,omitempty"`
	Key         string `json:"key"`
}

// BodyMode is how Postman sends the request body.
type BodyMode string

const (
	BodyRaw  BodyMode = "raw"
	BodyFile BodyMode = "file"
)

type Body struct {
	Mode BodyMode `json:"mode"`
	Raw  string   `json:"raw,omitempty"`
}
