package postman

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/conjure-postman/internal/conjure"
	"github.com/mark3labs/conjure-postman/internal/example"
)

// defaultHeaders are sent with every request.
var defaultHeaders = []Header{
	{Key: "Content-Type", Value: ContentTypeJSON},
}

var pathParamRe = regexp.MustCompile(`\{([^{}]+)\}`)

// NewRequest assembles the collection item for one endpoint. apiBaseVariable
// is the {{..._API_BASE}} placeholder that prefixes every path.
func NewRequest(apiBaseVariable string, catalog *conjure.Catalog, ep conjure.EndpointDefinition, ids IDSource) (Item, error) {
	return newRequest(apiBaseVariable, catalog, ep, ClassifyArguments(ep.Args), ids)
}

// newRequest assembles the item from already classified arguments.
func newRequest(apiBaseVariable string, catalog *conjure.Catalog, ep conjure.EndpointDefinition, args Arguments, ids IDSource) (Item, error) {
	docs := endpointDocs(ep, catalog)

	body, err := requestBody(args.Body, catalog)
	if err != nil {
		var ce *conjure.Error
		if errors.As(err, &ce) {
			if ce.Endpoint == "" {
				ce.Endpoint = ep.Name
			}
			return Item{}, ce
		}
		return Item{}, &conjure.Error{Code: conjure.SerializationError, Message: "render body", Endpoint: ep.Name, Cause: err}
	}

	return Item{
		Description: docs,
		ID:          ids.NewID(),
		Name:        endpointName(ep),
		Request: Request{
			Body:        body,
			Description: docs,
			Header:      requestHeaders(args.Header),
			Method:      string(ep.HttpMethod),
			URL:         requestURL(apiBaseVariable, ep.HttpPath, args),
		},
	}, nil
}

func endpointName(ep conjure.EndpointDefinition) string {
	if ep.Deprecated != nil {
		return ep.Name + " (Deprecated)"
	}
	return ep.Name
}

// endpointDocs joins the docs sections with one blank line. Sections are
// trimmed since IR docs written as YAML block scalars end in a newline.
func endpointDocs(ep conjure.EndpointDefinition, catalog *conjure.Catalog) string {
	var sections []string
	if d := strings.TrimSpace(ep.Docs); d != "" {
		sections = append(sections, d)
	}
	if ep.Deprecated != nil {
		sections = append(sections, fmt.Sprintf("**Deprecation:** %s", strings.TrimSpace(*ep.Deprecated)))
	}
	if ep.Returns != nil {
		sections = append(sections, fmt.Sprintf("**Returns:** {{%s}}", conjure.FormatType(ep.Returns, catalog)))
	}
	return strings.Join(sections, "\n\n")
}

// EndpointPath resolves httpPath under the API base and turns {name}
// placeholders into Postman's :name form.
func EndpointPath(httpPath string) string {
	p := path.Clean("/" + strings.TrimPrefix(httpPath, "/"))
	return pathParamRe.ReplaceAllString(p, ":$1")
}

func requestURL(apiBaseVariable, httpPath string, args Arguments) URL {
	prefix := HostnameVariable + ":" + PortVariable + "/"
	raw := prefix + apiBaseVariable + EndpointPath(httpPath)

	vars := make([]PathVariable, 0, len(args.Path))
	for _, a := range args.Path {
		vars = append(vars, PathVariable{Key: a.Name, Description: a.Docs})
	}
	query := make([]QueryParam, 0, len(args.Query))
	for _, a := range args.Query {
		query = append(query, QueryParam{Key: a.Name})
	}

	return URL{
		Host:     HostnameVariable,
		Path:     strings.Split(strings.TrimPrefix(raw, prefix), "/"),
		Port:     PortVariable,
		Query:    query,
		Raw:      raw,
		Variable: vars,
	}
}

// requestHeaders merges the defaults with header arguments, sorted by key.
// An argument naming a default header only contributes its docs.
func requestHeaders(headerArgs []conjure.ArgumentDefinition) []Header {
	headers := make([]Header, len(defaultHeaders), len(defaultHeaders)+len(headerArgs))
	copy(headers, defaultHeaders)
	for _, a := range headerArgs {
		pt, _ := a.ParamType.(conjure.HeaderParameter)
		key := pt.ParamID
		if key == "" {
			key = a.Name
		}
		merged := false
		for i := range headers[:len(defaultHeaders)] {
			if strings.EqualFold(headers[i].Key, key) {
				if headers[i].Description == "" {
					headers[i].Description = a.Docs
				}
				merged = true
				break
			}
		}
		if !merged {
			headers = append(headers, Header{Key: key, Description: a.Docs})
		}
	}
	sort.SliceStable(headers, func(i, j int) bool { return headers[i].Key < headers[j].Key })
	return headers
}

func requestBody(arg *conjure.ArgumentDefinition, catalog *conjure.Catalog) (*Body, error) {
	if arg == nil {
		return nil, nil
	}
	switch t := arg.Type.(type) {
	case conjure.PrimitiveType:
		if t.Kind == conjure.BINARY {
			return &Body{Mode: BodyFile}, nil
		}
	case conjure.UnknownType, nil:
		return nil, nil
	}

	value, err := example.Render(arg.Type, catalog)
	if err != nil {
		return nil, err
	}
	raw, err := example.Marshal(value)
	if err != nil {
		return nil, &conjure.Error{Code: conjure.SerializationError, Message: "encode example body", Cause: err}
	}
	return &Body{Mode: BodyRaw, Raw: string(raw)}, nil
}
