package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/conjure-postman/internal/conjure"
	"github.com/mark3labs/conjure-postman/internal/postman"
	genspec "github.com/mark3labs/conjure-postman/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input              string
	Out                string
	ProductName        string
	ProductVersion     string
	ProductDescription string
	APIPath            string
	ConfigPath         string
	DryRun             bool
	Force              bool
	Verbose            bool
	Watch              bool
	FixedIDs           bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: "."}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Postman collection from a Conjure IR document",
		Long: "Generate a Postman collection from a Conjure IR document (JSON or YAML). " +
			"OpenAPI v3 and Swagger v2 documents are converted first. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  conjure-postman generate --input api.conjure.json --product-name "Widget Store" --product-version 1.0.0 --out ./postman
  conjure-postman --config conjure-postman.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Conjure IR (or OpenAPI/Swagger) document")
	flags.String("out", "", "Output directory for the collection file; defaults to the current directory")
	flags.String("product-name", "", "Product name shown in the collection")
	flags.String("product-version", "", "Product version shown in the collection")
	flags.String("product-description", "", "Markdown description added to the collection info")
	flags.String("api-path", "", "Value of the <PRODUCT>_API_BASE collection variable")
	flags.Bool("dry-run", false, "Preview the planned output without writing files")
	flags.Bool("force", false, "Overwrite an existing collection file")
	flags.Bool("watch", false, "Regenerate whenever the input file changes")
	flags.Bool("fixed-ids", false, "Use the nil UUID for every identifier so output is reproducible")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"product-name", &cfg.ProductName},
		{"product-version", &cfg.ProductVersion},
		{"product-description", &cfg.ProductDescription},
		{"api-path", &cfg.APIPath},
	}
	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
		{"watch", &cfg.Watch},
		{"fixed-ids", &cfg.FixedIDs},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = "."
	}
	c.ProductName = strings.TrimSpace(c.ProductName)
	c.ProductVersion = strings.TrimSpace(c.ProductVersion)
	c.ProductDescription = strings.TrimSpace(c.ProductDescription)
	c.APIPath = strings.TrimSpace(c.APIPath)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if c.ProductName == "" {
		return newUsageError("generate: --product-name is required (set via flag or config file)")
	}
	if c.ProductVersion == "" {
		return newUsageError("generate: --product-version is required (set via flag or config file)")
	}
	if c.Watch {
		if c.DryRun {
			return newUsageError("generate: --watch cannot be combined with --dry-run")
		}
		if u, err := url.Parse(c.Input); err == nil && u.Scheme != "" && u.Host != "" {
			return newUsageError("generate: --watch requires a local --input file")
		}
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig, out io.Writer) error {
	logger := newLogger(os.Stderr, cfg.Verbose)

	if err := generateOnce(ctx, cfg, out, logger); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	// The first run wrote the file; later runs replace it.
	next := *cfg
	next.Force = true
	return watchInput(ctx, cfg.Input, logger, func() error {
		return generateOnce(ctx, &next, out, logger)
	})
}

func generateOnce(ctx context.Context, cfg *GenerateConfig, out io.Writer, logger zerolog.Logger) error {
	// 1) Load the definition (file or http/https URL), converting OpenAPI input
	res, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}
	logger.Debug().
		Str("input", res.Location).
		Str("format", res.Format.String()).
		Int("services", len(res.Definition.Services)).
		Msg("loaded definition")

	// 2) Build the collection
	var ids postman.IDSource = postman.RandomIDs{}
	if cfg.FixedIDs {
		ids = postman.FixedIDs{}
	}
	gen := postman.NewGenerator(postman.Config{
		ProductName:        cfg.ProductName,
		ProductVersion:     cfg.ProductVersion,
		ProductDescription: cfg.ProductDescription,
		APIPath:            cfg.APIPath,
	}, postman.WithIDSource(ids), postman.WithLogger(logger))

	collection, err := gen.Generate(res.Definition)
	if err != nil {
		var ce *conjure.Error
		if errors.As(err, &ce) {
			msg := fmt.Sprintf("generate: %s: %s", ce.Code, ce.Error())
			if ce.Type != "" {
				msg = fmt.Sprintf("%s\nType: %s", msg, ce.Type)
			}
			msg = fmt.Sprintf("%s\nLocation: %s", msg, res.Location)
			return newUsageError(msg)
		}
		return fmt.Errorf("generate: %w", err)
	}

	// 3) Write (or plan) the collection file
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	wr, err := postman.Write(collection, postman.WriteOptions{
		OutDir: cfg.Out,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		color.New(color.FgYellow).Fprintf(out, "Planned write to %s (%d bytes)\n", wr.Path, wr.Size)
		return nil
	}
	requests := 0
	for _, f := range collection.Item {
		requests += len(f.Item)
	}
	color.New(color.FgGreen).Fprintf(out, "Wrote %s (%d requests in %d folders)\n", wr.Path, requests, len(collection.Item))
	return nil
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "already exists") {
		return newUsageError(msg)
	}
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	// Nodes keep the literal scalar text: productVersion: 1.10 stays "1.10".
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := map[string]*string{
		"input":              &cfg.Input,
		"out":                &cfg.Out,
		"productname":        &cfg.ProductName,
		"productversion":     &cfg.ProductVersion,
		"productdescription": &cfg.ProductDescription,
		"apipath":            &cfg.APIPath,
	}
	bools := map[string]*bool{
		"dryrun":   &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
		"watch":    &cfg.Watch,
		"fixedids": &cfg.FixedIDs,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := bools[normalized]; ok {
			var decoded any
			if err := value.Decode(&decoded); err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			val, err := valueAsBool(decoded)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(n yaml.Node) (string, error) {
	switch {
	case n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null":
		return "", nil
	case n.Kind == yaml.ScalarNode:
		return strings.TrimSpace(n.Value), nil
	default:
		return "", fmt.Errorf("expected a scalar value, got %s", nodeKind(n.Kind))
	}
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
