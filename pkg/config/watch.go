package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reports writes to a configuration file until the context is
// cancelled. Credentials are only read at startup, so the callback's job is
// to tell the operator a restart is needed, not to hot-reload.
func Watch(ctx context.Context, logger zerolog.Logger, path string, onChange func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					logger.Debug().
						Str("file", event.Name).
						Str("op", event.Op.String()).
						Msg("Config file changed")
					onChange(event.Name)
				}

			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(werr).Msg("Config watcher error")
			}
		}
	}()

	return nil
}
