// Package postman turns a Conjure definition into a Postman v2.1 collection:
// one folder per service, one example request per endpoint.
package postman

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mark3labs/conjure-postman/internal/conjure"
)

const defaultPort = 443

// Config carries the product metadata stamped onto the collection.
type Config struct {
	ProductName        string // required
	ProductVersion     string // required
	ProductDescription string
	APIPath            string // value of the {{<PRODUCT>_API_BASE}} variable; omitted when empty
}

// Generator builds collections. It holds no per-run state and may be reused.
type Generator struct {
	config Config
	ids    IDSource
	logger zerolog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithIDSource replaces the random identifier source.
func WithIDSource(ids IDSource) Option { return func(g *Generator) { g.ids = ids } }

// WithLogger enables debug logging of the generation run.
func WithLogger(l zerolog.Logger) Option { return func(g *Generator) { g.logger = l } }

// NewGenerator returns a Generator using random identifiers and no logging
// unless overridden.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	g := &Generator{config: cfg, ids: RandomIDs{}, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// APIBaseVariable is the placeholder for the API base path of productName:
// "My Product" becomes {{MY_PRODUCT_API_BASE}}.
func APIBaseVariable(productName string) string {
	return "{{" + apiBaseName(productName) + "}}"
}

func apiBaseName(productName string) string {
	return strings.ToUpper(strings.ReplaceAll(productName, " ", "_")) + "_API_BASE"
}

// Generate builds the collection for def. Any endpoint failure aborts the
// whole run; no partial collection is returned.
func (g *Generator) Generate(def *conjure.Definition) (*Collection, error) {
	if def == nil {
		return nil, errors.New("postman: nil definition")
	}
	name := strings.TrimSpace(g.config.ProductName)
	if name == "" {
		return nil, errors.New("postman: product name is required")
	}
	version := strings.TrimSpace(g.config.ProductVersion)
	if version == "" {
		return nil, errors.New("postman: product version is required")
	}

	description := fmt.Sprintf("# %s %s", name, version)
	if d := strings.TrimSpace(g.config.ProductDescription); d != "" {
		description += "\n\n" + d
	}

	collection := &Collection{
		Auth: BearerAuth(),
		Event: []Event{
			g.testEvent(nonErrorStatusScript),
			g.testEvent(responseIsJSONScript),
		},
		Info: Info{
			PostmanID:   g.ids.NewID(),
			Description: description,
			Name:        name,
			Schema:      SchemaURI,
			Version:     version,
		},
		Item: make([]Folder, 0, len(def.Services)),
		Variable: []Variable{{
			ID:    g.ids.NewID(),
			Key:   "PORT",
			Name:  "PORT",
			Type:  VariableNumber,
			Value: defaultPort,
		}},
	}

	if apiPath := strings.TrimSpace(g.config.APIPath); apiPath != "" {
		base := apiBaseName(name)
		collection.Variable = append(collection.Variable, Variable{
			ID:    g.ids.NewID(),
			Key:   base,
			Name:  base,
			Type:  VariableString,
			Value: apiPath,
		})
	}

	catalog := conjure.NewCatalog(def.Types)
	apiBase := APIBaseVariable(name)
	g.logger.Debug().Int("types", catalog.Len()).Int("services", len(def.Services)).Msg("generating collection")

	for _, svc := range def.Services {
		folder := Folder{
			Description: svc.Docs,
			Item:        make([]Item, 0, len(svc.Endpoints)),
			Name:        svc.Name.Name,
		}
		for _, ep := range svc.Endpoints {
			args := ClassifyArguments(ep.Args)
			item, err := newRequest(apiBase, catalog, ep, args, g.ids)
			if err != nil {
				var ce *conjure.Error
				if errors.As(err, &ce) {
					if ce.Service == "" {
						ce.Service = svc.Name.Name
					}
					return nil, ce
				}
				return nil, fmt.Errorf("service %s endpoint %s: %w", svc.Name.Name, ep.Name, err)
			}
			if len(args.Ignored) > 0 {
				names := make([]string, 0, len(args.Ignored))
				for _, a := range args.Ignored {
					names = append(names, a.Name)
				}
				g.logger.Debug().
					Str("service", svc.Name.Name).
					Str("endpoint", ep.Name).
					Strs("ignored_args", names).
					Msg("arguments without effect on the request")
			}
			folder.Item = append(folder.Item, item)
		}
		g.logger.Debug().Str("service", svc.Name.Name).Int("requests", len(folder.Item)).Msg("built folder")
		collection.Item = append(collection.Item, folder)
	}

	return collection, nil
}

func (g *Generator) testEvent(exec []string) Event {
	return Event{
		ID:     g.ids.NewID(),
		Listen: "test",
		Script: Script{
			Exec: append([]string(nil), exec...),
			ID:   g.ids.NewID(),
			Type: ContentTypeJSON,
		},
	}
}
