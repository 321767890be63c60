package postman

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/conjure-postman/internal/fsutil"
)

// WriteOptions controls how a collection is persisted.
type WriteOptions struct {
	OutDir string // required
	Force  bool   // overwrite an existing collection file
	DryRun bool   // plan only
}

// WriteResult describes the file written (or planned).
type WriteResult struct {
	Path    string
	Size    int
	Written bool
}

// FileName is the collection file name derived from the product name.
func FileName(c *Collection) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(c.Info.Name), " ", "-"))
	return name + ".postman_collection.json"
}

// Marshal encodes c as indented JSON with a trailing newline. HTML
// characters are not escaped so placeholders stay readable.
func Marshal(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes c and stores it under opts.OutDir. A failed run never leaves
// a truncated collection behind.
func Write(c *Collection, opts WriteOptions) (*WriteResult, error) {
	if c == nil {
		return nil, fmt.Errorf("postman: nil collection")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("postman: output directory is required")
	}
	data, err := Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}
	target := filepath.Join(abs, FileName(c))
	res := &WriteResult{Path: target, Size: len(data)}
	if opts.DryRun {
		return res, nil
	}

	if err := fsutil.WriteFile(target, data, 0o644, opts.Force); err != nil {
		return nil, fmt.Errorf("postman: %w", err)
	}
	res.Written = true
	return res, nil
}
