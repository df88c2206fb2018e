package probe

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/browser"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"
)

type cycleSpec struct {
	Headless bool
	Title    string
	// LogFile receives the driver output. Empty routes it to the debug log.
	LogFile string
	Env     []string
}

type verdict struct {
	outcome models.Outcome
	detail  string
	err     error
}

func failed(err error) verdict {
	return verdict{outcome: models.Failed, detail: err.Error(), err: err}
}

// cycle launches one session, loads a fresh test page and checks its title.
// Whatever happens, a started session is closed and the page removed once.
func (r *Runner) cycle(ctx context.Context, log logger.Logger, t models.Target, launcher browser.Launcher, spec cycleSpec) verdict {
	if r.settings.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.SessionTimeout)
		defer cancel()
	}

	logOut, closeLog := r.driverLog(log, spec.LogFile)
	defer closeLog()

	log.Info("initializing session", logger.Bool("headless", spec.Headless))
	session, err := launcher.Launch(ctx, browser.Options{
		Engine:     t.Engine,
		DriverPath: r.driverPath(t),
		Binary:     r.binary(log, t),
		Headless:   spec.Headless,
		Width:      t.Launch.Width,
		Height:     t.Launch.Height,
		Args:       t.Launch.Args,
		Env:        spec.Env,
		LogOutput:  logOut,
		Debug:      r.settings.Debug,
	})
	if err != nil {
		return failed(&LaunchError{Backend: t.Backend, Err: err})
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("failed to close session", logger.Err(err))
			return
		}
		log.Debug("session closed")
	}()

	if d, ok := session.(browser.Describer); ok {
		log.Info("session started", logger.String("browser", d.Product()))
	}

	fixture, err := NewFixture(r.fixtureDir(), spec.Title)
	if err != nil {
		return failed(err)
	}
	defer func() {
		if err := fixture.Remove(); err != nil {
			log.Warn("failed to remove test page", logger.Err(err))
		}
	}()

	log.Debug("loading test page", logger.String("url", fixture.URL()))
	if err = session.Navigate(ctx, fixture.URL()); err != nil {
		return failed(errors.Wrap(err, "failed to load test page"))
	}

	title, err := session.Title(ctx)
	if err != nil {
		return failed(errors.Wrap(err, "failed to read page title"))
	}
	log.Info("page title", logger.String("title", title))

	if !strings.Contains(title, spec.Title) {
		return failed(&MismatchError{Expected: spec.Title, Actual: title})
	}

	return verdict{outcome: models.Passed, detail: title}
}

// driverLog opens path for driver output. A log file that cannot be created
// only costs the log, never the probe.
func (r *Runner) driverLog(log logger.Logger, path string) (io.Writer, func()) {
	if path == "" {
		if r.settings.Debug {
			return log.Writer(), func() {}
		}
		return nil, func() {}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn("driver log unavailable", logger.String("path", path), logger.Err(err))
		return nil, func() {}
	}

	f, err := os.Create(path)
	if err != nil {
		log.Warn("driver log unavailable", logger.String("path", path), logger.Err(err))
		return nil, func() {}
	}

	log.Debug("writing driver log", logger.String("path", path))
	return f, func() { f.Close() }
}
