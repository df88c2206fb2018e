// Package probe runs the smoke test for each configured browser target:
// prerequisite checks, a launch-load-verify cycle and, for progressive
// targets, the staged CLI and headful checks.
package probe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vcnkl/browserprobe/browser"
	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"
)

type Settings struct {
	LogDir            string
	VersionTimeout    time.Duration
	CLITimeout        time.Duration
	ScreenshotTimeout time.Duration
	SessionTimeout    time.Duration
	DisplayEnv        []string
	Env               map[string]string
	ScreenshotDir     string
	ScreenshotURL     string
	// FixtureDir holds the temporary test pages. Empty means os.TempDir().
	FixtureDir string
	Debug      bool
}

type LauncherFactory func(backend models.Backend) (browser.Launcher, error)

type Option func(*Runner)

func WithCommandRunner(cmd exec.Runner) Option {
	return func(r *Runner) {
		r.cmd = cmd
	}
}

func WithLauncherFactory(f LauncherFactory) Option {
	return func(r *Runner) {
		r.launchers = f
	}
}

func WithFileExists(f func(path string) bool) Option {
	return func(r *Runner) {
		r.fileExists = f
	}
}

// WithBaseEnv replaces the process environment as the bottom env layer.
func WithBaseEnv(env []string) Option {
	return func(r *Runner) {
		r.baseEnv = env
	}
}

// Runner probes targets one at a time. A target never affects the outcome
// of the next one.
type Runner struct {
	settings   Settings
	log        logger.Logger
	cmd        exec.Runner
	launchers  LauncherFactory
	fileExists func(path string) bool
	baseEnv    []string
	checker    *Checker
}

func NewRunner(settings Settings, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		settings:   settings,
		log:        log,
		cmd:        exec.NewCommandRunner(),
		launchers:  browser.NewLauncher,
		fileExists: exec.FileExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.checker = NewChecker(r.cmd, settings.VersionTimeout)
	return r
}

func (r *Runner) Run(ctx context.Context, targets []models.Target) *models.ResultSet {
	results := models.NewResultSet()

	for _, t := range targets {
		if ctx.Err() != nil {
			results.Add(&models.TargetResult{
				Name:    t.Name,
				Label:   t.Label,
				Outcome: models.Skipped,
				Detail:  "run interrupted",
				Error:   ctx.Err(),
			})
			continue
		}
		results.Add(r.Probe(ctx, t))
	}

	return results
}

func (r *Runner) Probe(ctx context.Context, t models.Target) *models.TargetResult {
	start := time.Now()
	log := r.log.WithPrefix(t.Name)
	result := &models.TargetResult{Name: t.Name, Label: t.Label}
	defer func() {
		result.Duration = time.Since(start)
		log.Info("probe finished",
			logger.String("outcome", result.Outcome.String()),
			logger.Duration("duration", result.Duration),
		)
	}()

	if !t.Enabled {
		log.Warn("target skipped", logger.String("reason", t.DisabledReason))
		result.Outcome = models.Skipped
		result.Detail = t.DisabledReason
		return result
	}

	log.Info("probing "+t.Label, logger.String("backend", string(t.Backend)))

	launcher, err := r.launchers(t.Backend)
	if err != nil {
		r.fail(log, result, err)
		return result
	}

	env := exec.ComposeEnv(r.baseEnv, r.settings.Env, t.Env)

	browserCmd, err := r.checkPrerequisites(ctx, log, t, launcher, env)
	if err != nil {
		log.Warn("skipping "+t.Label, logger.Err(err))
		result.Outcome = models.Skipped
		result.Detail = err.Error()
		result.Error = err
		return result
	}

	if t.Progressive {
		r.progressive(ctx, log, t, launcher, browserCmd, env, result)
		return result
	}

	v := r.cycle(ctx, log, t, launcher, cycleSpec{
		Headless: t.Launch.Headless,
		Title:    t.Title,
		Env:      env,
	})
	result.Outcome, result.Detail, result.Error = v.outcome, v.detail, v.err
	if v.err != nil {
		r.logFailure(log, v.err)
	}
	return result
}

// Check runs the availability checks of each target without launching
// anything. Ready targets are recorded as Passed.
func (r *Runner) Check(ctx context.Context, targets []models.Target) *models.ResultSet {
	results := models.NewResultSet()

	for _, t := range targets {
		log := r.log.WithPrefix(t.Name)
		result := &models.TargetResult{Name: t.Name, Label: t.Label}
		results.Add(result)

		if !t.Enabled {
			result.Outcome = models.Skipped
			result.Detail = t.DisabledReason
			continue
		}

		launcher, err := r.launchers(t.Backend)
		if err != nil {
			r.fail(log, result, err)
			continue
		}

		env := exec.ComposeEnv(r.baseEnv, r.settings.Env, t.Env)
		browserCmd, err := r.checkPrerequisites(ctx, log, t, launcher, env)
		if err != nil {
			result.Outcome = models.Skipped
			result.Detail = err.Error()
			result.Error = err
			continue
		}

		result.Outcome = models.Passed
		result.Detail = "ready"
		if browserCmd != "" {
			result.Detail = "ready, using " + browserCmd
		}
	}

	return results
}

// checkPrerequisites returns the browser command that satisfied the browser
// requirement, or the fixed browser path.
func (r *Runner) checkPrerequisites(ctx context.Context, log logger.Logger, t models.Target, launcher browser.Launcher, env []string) (string, error) {
	if t.RequiresDriver() {
		name := t.Driver.DisplayName()
		if !r.checker.Check(ctx, log, name, t.Driver.Command, env).Available {
			return "", missing("%s not available", name)
		}
	}

	browserCmd := ""
	switch {
	case t.Browser.Path != "":
		if !r.fileExists(t.Browser.Path) {
			log.Warn(t.Browser.DisplayName()+" not found", logger.String("path", t.Browser.Path))
			return "", missing("%s not found at %s", t.Browser.DisplayName(), t.Browser.Path)
		}
		log.Info(t.Browser.DisplayName()+" found", logger.String("path", t.Browser.Path))
		browserCmd = t.Browser.Path
	case len(t.Browser.Commands) > 0:
		for _, command := range t.Browser.Commands {
			if r.checker.Check(ctx, log, t.Browser.DisplayName(), command, env).Available {
				browserCmd = command
				break
			}
		}
		if browserCmd == "" {
			return "", missing("%s not available", t.Browser.DisplayName())
		}
	}

	if p, ok := launcher.(browser.Preflighter); ok {
		version, err := p.Preflight(ctx)
		if err != nil {
			log.Warn(string(t.Backend)+" runtime not available", logger.Err(err))
			return "", missing("%s runtime not available: %v", t.Backend, err)
		}
		log.Info(string(t.Backend)+" runtime found", logger.String("version", version))
	}

	return browserCmd, nil
}

func (r *Runner) driverPath(t models.Target) string {
	for _, p := range t.Driver.Paths {
		if r.fileExists(p) {
			return p
		}
	}
	return t.Driver.Command
}

// binary returns the browser binary override when it exists on disk.
func (r *Runner) binary(log logger.Logger, t models.Target) string {
	if t.Launch.Binary == "" {
		return ""
	}
	if !r.fileExists(t.Launch.Binary) {
		log.Debug("binary override not found, using the default browser", logger.String("binary", t.Launch.Binary))
		return ""
	}
	return t.Launch.Binary
}

func (r *Runner) fixtureDir() string {
	if r.settings.FixtureDir != "" {
		return r.settings.FixtureDir
	}
	return os.TempDir()
}

func (r *Runner) fail(log logger.Logger, result *models.TargetResult, err error) {
	result.Outcome = models.Failed
	result.Detail = err.Error()
	result.Error = err
	r.logFailure(log, err)
}

func (r *Runner) logFailure(log logger.Logger, err error) {
	log.Error("probe failed", logger.String("kind", string(Classify(err))), logger.Err(err))
	log.Debug("failure detail", logger.String("trace", fmt.Sprintf("%+v", err)))
}
