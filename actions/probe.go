package actions

import (
	"context"
	"io"
	"time"

	"github.com/vcnkl/browserprobe/config"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"
	"github.com/vcnkl/browserprobe/probe"
	"github.com/vcnkl/browserprobe/report"
	"github.com/vcnkl/browserprobe/stores/reports"
)

type ProbeAction struct {
	config     *config.Config
	log        logger.Logger
	out        io.Writer
	reportPath string
	debug      bool
	opts       []probe.Option
}

func NewProbeAction(cfg *config.Config, log logger.Logger, out io.Writer, opts ...probe.Option) *ProbeAction {
	return &ProbeAction{
		config: cfg,
		log:    log,
		out:    out,
		opts:   opts,
	}
}

// SaveReport makes Execute persist the run as JSON at path.
func (a *ProbeAction) SaveReport(path string) *ProbeAction {
	a.reportPath = path
	return a
}

func (a *ProbeAction) Debug(debug bool) *ProbeAction {
	a.debug = debug
	return a
}

func (a *ProbeAction) Execute(ctx context.Context, targets []models.Target) (*models.ResultSet, error) {
	start := time.Now()

	runner := probe.NewRunner(Settings(a.config, a.debug), a.log, a.opts...)
	results := runner.Run(ctx, targets)
	duration := time.Since(start)

	c := results.Counts()
	a.log.Info("probes completed",
		logger.Int("passed", c.Passed),
		logger.Int("failed", c.Failed),
		logger.Int("skipped", c.Skipped),
		logger.Duration("duration", duration),
	)

	if err := report.New(a.out).Write(results); err != nil {
		return results, err
	}

	if a.reportPath != "" {
		store := reports.NewStore(a.reportPath)
		store.Set(reports.FromResultSet(results, start, duration))
		if err := store.Save(); err != nil {
			return results, err
		}
		a.log.Info("report saved", logger.String("path", a.reportPath))
	}

	return results, nil
}

func Settings(cfg *config.Config, debug bool) probe.Settings {
	return probe.Settings{
		LogDir:            cfg.LogDir,
		VersionTimeout:    cfg.Timeouts.Version,
		CLITimeout:        cfg.Timeouts.CLI,
		ScreenshotTimeout: cfg.Timeouts.Screenshot,
		SessionTimeout:    cfg.Timeouts.Session,
		DisplayEnv:        cfg.DisplayEnv,
		Env:               cfg.Env,
		ScreenshotDir:     cfg.Progressive.ScreenshotDir,
		ScreenshotURL:     cfg.Progressive.ScreenshotURL,
		Debug:             debug,
	}
}
