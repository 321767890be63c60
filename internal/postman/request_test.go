package postman

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/conjure-postman/internal/conjure"
)

const apiBase = "{{WIDGETS_API_BASE}}"

var (
	widgetIDName = conjure.TypeName{Name: "WidgetId", Package: "com.example"}
	widgetName   = conjure.TypeName{Name: "Widget", Package: "com.example"}
)

func widgetCatalog() *conjure.Catalog {
	return conjure.NewCatalog([]conjure.TypeDefinition{
		conjure.AliasDefinition{Name: widgetIDName, Alias: conjure.Primitive(conjure.STRING)},
		conjure.ObjectDefinition{Name: widgetName, Fields: []conjure.FieldDefinition{
			{Name: "id", Type: conjure.Reference(widgetIDName)},
			{Name: "parts", Type: conjure.List(conjure.Reference(widgetName))},
		}},
	})
}

func TestNewRequest_URL(t *testing.T) {
	t.Parallel()
	ep := conjure.EndpointDefinition{
		Name:       "getWidget",
		HttpMethod: conjure.GET,
		HttpPath:   "/widgets/{widgetId}",
		Args: []conjure.ArgumentDefinition{
			{Name: "widgetId", Type: conjure.Reference(widgetIDName), ParamType: conjure.PathParameter{}, Docs: "the id"},
			{Name: "pageSize", Type: conjure.Primitive(conjure.INTEGER), ParamType: conjure.QueryParameter{ParamID: "limit"}},
		},
	}

	item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)

	u := item.Request.URL
	assert.Equal(t, "{{HOSTNAME}}:{{PORT}}/{{WIDGETS_API_BASE}}/widgets/:widgetId", u.Raw)
	assert.Equal(t, HostnameVariable, u.Host)
	assert.Equal(t, PortVariable, u.Port)
	assert.Equal(t, []string{"{{WIDGETS_API_BASE}}", "widgets", ":widgetId"}, u.Path)
	assert.Equal(t, []PathVariable{{Key: "widgetId", Description: "the id"}}, u.Variable)
	assert.Equal(t, []QueryParam{{Key: "pageSize"}}, u.Query)

	assert.Equal(t, "GET", item.Request.Method)
	assert.Nil(t, item.Request.Body)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", item.ID)
}

func TestEndpointPath(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"/widgets/{widgetId}":          "/widgets/:widgetId",
		"widgets/{a}/parts/{b}":        "/widgets/:a/parts/:b",
		"/widgets/":                    "/widgets",
		"":                             "/",
		"/a//b":                        "/a/b",
		"/files/{path}/{version}/info": "/files/:path/:version/info",
	}
	for in, want := range cases {
		assert.Equal(t, want, EndpointPath(in), in)
	}
}

func TestNewRequest_Headers(t *testing.T) {
	t.Parallel()
	ep := conjure.EndpointDefinition{
		Name:       "list",
		HttpMethod: conjure.GET,
		HttpPath:   "/widgets",
		Args: []conjure.ArgumentDefinition{
			{Name: "trace", Type: conjure.Primitive(conjure.STRING), ParamType: conjure.HeaderParameter{ParamID: "X-Trace"}, Docs: "trace id"},
			{Name: "accept", Type: conjure.Primitive(conjure.STRING), ParamType: conjure.HeaderParameter{ParamID: "Accept"}},
			{Name: "contentType", Type: conjure.Primitive(conjure.STRING), ParamType: conjure.HeaderParameter{ParamID: "content-type"}, Docs: "always json"},
			{Name: "Fallback-Name", Type: conjure.Primitive(conjure.STRING), ParamType: conjure.HeaderParameter{}},
		},
	}

	item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)

	assert.Equal(t, []Header{
		{Key: "Accept"},
		{Key: "Content-Type", Value: ContentTypeJSON, Description: "always json"},
		{Key: "Fallback-Name"},
		{Key: "X-Trace", Description: "trace id"},
	}, item.Request.Header)

	// defaults are not shared between requests
	assert.Equal(t, "", defaultHeaders[0].Description)
}

func TestNewRequest_Body(t *testing.T) {
	t.Parallel()
	ep := conjure.EndpointDefinition{
		Name:       "createWidget",
		HttpMethod: conjure.POST,
		HttpPath:   "/widgets",
		Args: []conjure.ArgumentDefinition{
			{Name: "widget", Type: conjure.Reference(widgetName), ParamType: conjure.BodyParameter{}},
			{Name: "other", Type: conjure.Primitive(conjure.STRING), ParamType: conjure.BodyParameter{}},
		},
	}

	item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)
	require.NotNil(t, item.Request.Body)
	assert.Equal(t, BodyRaw, item.Request.Body.Mode)
	assert.Equal(t, "{\n  \"id\" : \"{{ WidgetId(STRING) }}\",\n  \"parts\" : [ \"{{Widget}}\" ]\n}", item.Request.Body.Raw)
}

func TestNewRequest_BodyVariants(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		typ  conjure.Type
		want *Body
	}{
		{"binary", conjure.Primitive(conjure.BINARY), &Body{Mode: BodyFile}},
		{"string", conjure.Primitive(conjure.STRING), &Body{Mode: BodyRaw, Raw: `"{{STRING}}"`}},
		{"optional list", conjure.Optional(conjure.List(conjure.Primitive(conjure.STRING))), &Body{Mode: BodyRaw, Raw: `[ "{{STRING}}" ]`}},
		{"unknown", conjure.UnknownType{Tag: "hologram"}, nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ep := conjure.EndpointDefinition{
				Name:       "upload",
				HttpMethod: conjure.PUT,
				HttpPath:   "/upload",
				Args:       []conjure.ArgumentDefinition{{Name: "body", Type: tc.typ, ParamType: conjure.BodyParameter{}}},
			}
			item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, item.Request.Body)
		})
	}
}

func TestNewRequest_Docs(t *testing.T) {
	t.Parallel()
	reason := "use createWidget"
	ep := conjure.EndpointDefinition{
		Name:       "putWidget",
		HttpMethod: conjure.PUT,
		HttpPath:   "/widgets",
		Docs:       "Stores a widget.\n",
		Deprecated: &reason,
		Returns:    conjure.Optional(conjure.Reference(widgetIDName)),
	}

	item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)

	assert.Equal(t, "putWidget (Deprecated)", item.Name)
	want := "Stores a widget.\n\n**Deprecation:** use createWidget\n\n**Returns:** {{Optional<WidgetId(STRING)>}}"
	assert.Equal(t, want, item.Description)
	assert.Equal(t, want, item.Request.Description)
}

func TestNewRequest_NoDocs(t *testing.T) {
	t.Parallel()
	ep := conjure.EndpointDefinition{Name: "ping", HttpMethod: conjure.GET, HttpPath: "/ping"}
	item, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)
	assert.Equal(t, "ping", item.Name)
	assert.Empty(t, item.Description)

	// block scalars leave trailing newlines; whitespace-only docs add nothing
	reason := "  use pong\n"
	ep.Docs = " \n\t"
	ep.Deprecated = &reason
	item, err = NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.NoError(t, err)
	assert.Equal(t, "**Deprecation:** use pong", item.Description)
}

func TestNewRequest_UnresolvedBodyType(t *testing.T) {
	t.Parallel()
	ep := conjure.EndpointDefinition{
		Name:       "broken",
		HttpMethod: conjure.POST,
		HttpPath:   "/broken",
		Args: []conjure.ArgumentDefinition{
			{Name: "body", Type: conjure.Reference(conjure.TypeName{Name: "Ghost"}), ParamType: conjure.BodyParameter{}},
		},
	}
	_, err := NewRequest(apiBase, widgetCatalog(), ep, FixedIDs{})
	require.Error(t, err)

	var ce *conjure.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, conjure.SchemaConsistencyError, ce.Code)
	assert.Equal(t, "broken", ce.Endpoint)
	assert.Equal(t, "Ghost", ce.Type)
}
