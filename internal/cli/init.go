package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mark3labs/conjure-postman/internal/fsutil"
)

const defaultConfigFile = "conjure-postman.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample conjure-postman configuration file",
		Long:  "Scaffold a commented conjure-postman configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, w io.Writer) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := fsutil.WriteFile(absPath, []byte(content), 0o644, cfg.Force); err != nil {
		if errors.Is(err, fsutil.ErrExists) {
			return newUsageError(fmt.Sprintf("init: %v", err))
		}
		return newUsageError(fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	color.New(color.FgGreen).Fprintf(w, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# conjure-postman configuration (YAML)
# Command-line flags override config values.

# Path or URL to the Conjure IR document (http/https or local file).
# OpenAPI v3 and Swagger v2 documents are accepted too.
# input: ./build/api.conjure.json

# Output directory for <product-name>.postman_collection.json.
# Defaults to the current directory.
# out: ./postman

# Product name and version stamped onto the collection (required).
# productName: Widget Store
# productVersion: 1.0.0

# Markdown appended to the collection description.
# productDescription: Manage widgets.

# Value of the {{<PRODUCT_NAME>_API_BASE}} variable that prefixes every path.
# apiPath: /api

# Preview the planned output without writing files.
# dryRun: false

# Overwrite an existing collection file.
# force: false

# Regenerate whenever the input file changes (local files only).
# watch: false

# Use the nil UUID for every identifier so output is reproducible.
# fixedIds: false

# Enable verbose logging.
# verbose: false
`
