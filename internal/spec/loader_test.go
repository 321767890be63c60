package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/conjure-postman/internal/conjure"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "ftp://example.com/ir.json")
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/ir.json"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	if err == nil {
		t.Fatalf("expected network error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

const minimalIR = `{
  "version": 1,
  "types": [
    {"type": "object", "object": {"typeName": {"name": "Widget", "package": "com.example"}, "fields": [
      {"fieldName": "name", "type": {"type": "primitive", "primitive": "STRING"}}
    ]}}
  ],
  "services": [
    {"serviceName": {"name": "WidgetService", "package": "com.example"}, "endpoints": [
      {"endpointName": "getWidget", "httpMethod": "GET", "httpPath": "/widgets/{widgetId}",
       "args": [{"argName": "widgetId", "type": {"type": "primitive", "primitive": "STRING"}, "paramType": {"type": "path", "path": {}}}],
       "returns": {"type": "reference", "reference": {"name": "Widget", "package": "com.example"}}}
    ]}
  ]
}`

func TestLoad_RetriesTransientHTTPErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(minimalIR))
	}))
	defer srv.Close()

	res, err := Load(context.Background(), srv.URL+"/ir.json", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
	if res.Format != FormatConjure || res.Location != srv.URL+"/ir.json" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoad_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/ir.json", WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single request, got %d", calls.Load())
	}
}

func TestLoad_ConjureFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "ir.json", minimalIR)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Format != FormatConjure {
		t.Fatalf("expected conjure format, got %v", res.Format)
	}
	def := res.Definition
	if len(def.Types) != 1 || len(def.Services) != 1 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	ep := def.Services[0].Endpoints[0]
	if ep.Name != "getWidget" || ep.HttpMethod != conjure.GET {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if _, ok := ep.Args[0].ParamType.(conjure.PathParameter); !ok {
		t.Fatalf("expected path parameter, got %T", ep.Args[0].ParamType)
	}
}

func TestLoad_ConjureDecodeError(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "ir.yaml", `
version: 1
types:
  - type: object
    object:
      typeName: {name: Broken}
      fields:
        - fieldName: x
          type: {}
`)
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
	var ce *conjure.Error
	if !errors.As(err, &ce) || ce.Code != conjure.DecodeError {
		t.Fatalf("expected wrapped conjure DecodeError, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		doc  string
		want Format
		err  bool
	}{
		{"conjure json", `{"version": 1, "types": [], "services": []}`, FormatConjure, false},
		{"conjure yaml", "services: []\n", FormatConjure, false},
		{"openapi", "openapi: 3.0.3\ninfo: {}\n", FormatOpenAPI3, false},
		{"swagger", "swagger: \"2.0\"\n", FormatSwagger2, false},
		{"openapi 2 is not v3", "openapi: 2.0\n", FormatUnknown, true},
		{"unrelated", "hello: world\n", FormatUnknown, true},
		{"garbage", "{[", FormatUnknown, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DetectFormat([]byte(tc.doc))
			if (err != nil) != tc.err {
				t.Fatalf("err = %v, want error %v", err, tc.err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoad_Unrecognized(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "other.yaml", "hello: world")
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
}

func TestLoad_V3_InvalidSpec(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "bad.yaml", `openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`)

	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected validation error for incomplete responses")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ValidationError && se.Code != ParseError { // parser version differences
		t.Fatalf("expected ValidationError/ParseError, got %v", se.Code)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_V3_Conversion(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "petstore.yaml", `openapi: 3.0.3
info:
  title: Pets
  version: "1.0.0"
tags:
  - name: pets
    description: Pet operations
paths:
  /pets/{petId}:
    get:
      tags: [pets]
      operationId: getPet
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: string}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string}
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Format != FormatOpenAPI3 {
		t.Fatalf("expected openapi3, got %v", res.Format)
	}
	def := res.Definition
	if len(def.Services) != 1 || def.Services[0].Name.Name != "pets" {
		t.Fatalf("unexpected services: %+v", def.Services)
	}
	if def.Services[0].Docs != "Pet operations" {
		t.Fatalf("expected tag description as docs, got %q", def.Services[0].Docs)
	}
	ep := def.Services[0].Endpoints[0]
	if ep.Name != "getPet" || ep.HttpPath != "/pets/{petId}" {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if ref, ok := ep.Returns.(conjure.ReferenceType); !ok || ref.Name.Name != "Pet" {
		t.Fatalf("expected Pet reference, got %#v", ep.Returns)
	}
}

func TestLoad_V2_Conversion_Success(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "swagger.yaml", `swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/hello":
    get:
      responses:
        "200":
          description: ok
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Format != FormatSwagger2 {
		t.Fatalf("expected swagger2, got %v", res.Format)
	}
	svcs := res.Definition.Services
	if len(svcs) != 1 || svcs[0].Name.Name != "default" {
		t.Fatalf("expected one default service, got %+v", svcs)
	}
	if got := svcs[0].Endpoints[0].Name; got != "getHello" {
		t.Fatalf("expected derived name getHello, got %q", got)
	}
}

func TestLoad_V2_Conversion_Failure(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "swagger-bad.yaml", `swagger: "2.0"
paths: [1, 2]
`)

	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected conversion error")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ConversionError && se.Code != ValidationError && se.Code != ParseError {
		t.Fatalf("expected ConversionError/ValidationError/ParseError, got %v", se.Code)
	}
}
