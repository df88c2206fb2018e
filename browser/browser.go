// Package browser drives real browsers through interchangeable automation
// backends: W3C WebDriver (chromedriver/geckodriver), the Chrome DevTools
// protocol and Playwright.
package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/vcnkl/browserprobe/models"
)

// Session is one automated browser instance.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	Close() error
}

// Describer is implemented by sessions that can name the browser build
// they are driving.
type Describer interface {
	Product() string
}

type Options struct {
	Engine models.Engine
	// DriverPath is an absolute driver path or a bare command resolved from
	// PATH by the backend.
	DriverPath string
	Binary     string
	Headless   bool
	Width      int
	Height     int
	Args       []string
	Env        []string
	LogOutput  io.Writer
	Debug      bool
}

type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Preflighter is implemented by launchers that ship their own runtime and
// can verify it before a launch is attempted.
type Preflighter interface {
	Preflight(ctx context.Context) (version string, err error)
}

func NewLauncher(backend models.Backend) (Launcher, error) {
	switch backend {
	case models.BackendWebDriver:
		return NewWebDriverLauncher(), nil
	case models.BackendDevTools:
		return NewDevToolsLauncher(), nil
	case models.BackendPlaywright:
		return NewPlaywrightLauncher(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// await runs a blocking library call and gives up when ctx ends first. The
// call keeps running until the session is closed.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// acquire is await for calls that hand back a resource. A resource that
// arrives after ctx ended is passed to release instead of being dropped.
func acquire[T any](ctx context.Context, fn func() (T, error), release func(T)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				release(r.value)
			}
		}()
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

var processEnvMu sync.Mutex

// withProcessEnv runs fn with env applied to the process environment, for
// libraries that start children from os.Environ. Variables are restored
// when fn returns.
func withProcessEnv[T any](env []string, fn func() (T, error)) (T, error) {
	processEnvMu.Lock()
	defer processEnvMu.Unlock()

	type previous struct {
		value string
		set   bool
	}
	saved := make(map[string]previous)
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		old, set := os.LookupEnv(key)
		if set && old == value {
			continue
		}
		if _, seen := saved[key]; !seen {
			saved[key] = previous{value: old, set: set}
		}
		_ = os.Setenv(key, value)
	}
	defer func() {
		for key, p := range saved {
			if p.set {
				_ = os.Setenv(key, p.value)
			} else {
				_ = os.Unsetenv(key)
			}
		}
	}()

	return fn()
}
