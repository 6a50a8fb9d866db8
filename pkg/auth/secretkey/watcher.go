package secretkey

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rhuss/secretkey/pkg/debug"
	"github.com/rhuss/secretkey/pkg/observability"
)

// BuildFunc produces a fresh store, typically by calling Build.
type BuildFunc func(ctx context.Context) (*Store, error)

// Reloader rebuilds the credential store and publishes it on an
// Authenticator. A failed rebuild leaves the published store untouched.
type Reloader struct {
	authn *Authenticator
	build BuildFunc

	// mu serializes rebuilds so a slow build cannot publish over a newer one.
	mu sync.Mutex
}

// NewReloader creates a Reloader.
func NewReloader(authn *Authenticator, build BuildFunc) *Reloader {
	return &Reloader{authn: authn, build: build}
}

// Reload rebuilds and publishes the store.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.build(ctx)
	if err != nil {
		observability.CredentialStoreReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("reloading credential store: %w", err)
	}

	prev := r.authn.Swap(store)
	observability.CredentialStoreReloadsTotal.WithLabelValues("ok").Inc()
	slog.Info("credential store reloaded",
		"scheme", r.authn.Scheme(),
		"entries", store.Len(),
		"previous_entries", prev.Len(),
	)
	return nil
}

// DefaultDebounce is the quiet period before a file change triggers a reload.
const DefaultDebounce = 100 * time.Millisecond

// Watch reloads whenever the file at path is written, created, or renamed.
// It watches the parent directory so editors that replace the file
// atomically are noticed. Watch returns once the watcher is running; it
// stops when ctx is canceled.
func (r *Reloader) Watch(ctx context.Context, path string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	slog.Info("watching secrets file", "path", path)

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				debug.Log("reload", "secrets watcher stopped", "path", path)
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debug.Log("reload", "secrets file changed", "path", path, "op", event.Op.String())

				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := r.Reload(ctx); err != nil {
						slog.Warn("keeping previous credential store", "error", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("secrets watcher error", "error", err)
			}
		}
	}()

	return nil
}
