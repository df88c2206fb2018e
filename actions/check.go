package actions

import (
	"context"
	"io"

	"github.com/vcnkl/browserprobe/config"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"
	"github.com/vcnkl/browserprobe/probe"
	"github.com/vcnkl/browserprobe/report"
)

// CheckAction reports which targets could run, without launching browsers.
type CheckAction struct {
	config *config.Config
	log    logger.Logger
	out    io.Writer
	opts   []probe.Option
}

func NewCheckAction(cfg *config.Config, log logger.Logger, out io.Writer, opts ...probe.Option) *CheckAction {
	return &CheckAction{
		config: cfg,
		log:    log,
		out:    out,
		opts:   opts,
	}
}

func (a *CheckAction) Execute(ctx context.Context, targets []models.Target) (*models.ResultSet, error) {
	runner := probe.NewRunner(Settings(a.config, false), a.log, a.opts...)
	results := runner.Check(ctx, targets)

	if err := report.New(a.out).Write(results); err != nil {
		return results, err
	}
	return results, nil
}
