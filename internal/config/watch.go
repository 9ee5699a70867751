package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadDelay collapses the burst of events an editor produces on save.
const ReloadDelay = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands each valid config to fn.
// Invalid files are logged and skipped. It blocks until ctx is done.
//
// The parent directory is watched rather than the file itself, so editors
// that save by rename keep working.
func Watch(ctx context.Context, path string, log *zap.Logger, fn func(*Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Debug("watching config", zap.String("path", abs))

	timer := time.NewTimer(ReloadDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, abs) {
				continue
			}
			log.Debug("config changed", zap.String("op", ev.Op.String()))
			timer.Reset(ReloadDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config reload rejected", zap.Error(err))
				continue
			}
			log.Info("config reloaded",
				zap.String("intensity", cfg.Intensity),
				zap.String("scheme", cfg.ColorScheme),
			)
			fn(cfg)

		case <-ctx.Done():
			return nil
		}
	}
}

func relevant(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
