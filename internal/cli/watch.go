package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchInput calls regenerate whenever the input file is written or
// re-created, until ctx is cancelled. Failed regenerations are logged and
// watching continues.
func watchInput(ctx context.Context, input string, logger zerolog.Logger, regenerate func() error) error {
	absPath, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("watch: absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory (more reliable for editors that do atomic saves)
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch: watch directory: %w", err)
	}
	logger.Info().Str("path", absPath).Msg("watching input for changes")

	filename := filepath.Base(absPath)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("stopped watching")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("input changed")
			if err := regenerate(); err != nil {
				logger.Error().Err(err).Msg("regeneration failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")
		}
	}
}
