package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/browser"
	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"
)

const (
	StageCLIHeadless       = "cli_headless"
	StageWebDriverHeadless = "webdriver_headless"
	StageWebDriverHeadful  = "webdriver_headful"
)

// progressive escalates from the bare browser CLI to a headless session and
// finally to a headful one. Only a failed CLI stage stops the escalation;
// the headful session runs even after a headless failure.
func (r *Runner) progressive(ctx context.Context, log logger.Logger, t models.Target, launcher browser.Launcher, browserCmd string, env []string, result *models.TargetResult) {
	result.Stages = []models.StageResult{
		{Name: StageCLIHeadless},
		{Name: StageWebDriverHeadless},
		{Name: StageWebDriverHeadful},
	}
	defer func() {
		result.Outcome, result.Detail = progressiveOutcome(result.Stages)
	}()

	stageLog := log.WithStage(StageCLIHeadless)
	version, err := r.cliHeadless(ctx, stageLog, browserCmd, env)
	if err != nil {
		r.logFailure(stageLog, err)
		result.Stages[0] = models.StageResult{Name: StageCLIHeadless, Outcome: models.Failed, Detail: err.Error()}
		result.Error = err
		return
	}
	result.Stages[0] = models.StageResult{Name: StageCLIHeadless, Outcome: models.Passed, Detail: version}
	r.screenshot(ctx, stageLog, t, browserCmd, env)

	stageLog = log.WithStage(StageWebDriverHeadless)
	v := r.cycle(ctx, stageLog, t, launcher, cycleSpec{
		Headless: true,
		Title:    t.Title,
		LogFile:  r.stageLogFile(t, "headless"),
		Env:      env,
	})
	result.Stages[1] = models.StageResult{Name: StageWebDriverHeadless, Outcome: v.outcome, Detail: v.detail}
	if v.err != nil {
		r.logFailure(stageLog, v.err)
		result.Error = v.err
	}

	stageLog = log.WithStage(StageWebDriverHeadful)
	display, ok := r.display(env)
	if !ok {
		stageLog.Warn("no display available, skipping headful session", logger.Strings("checked", r.settings.DisplayEnv))
		result.Stages[2] = models.StageResult{Name: StageWebDriverHeadful, Outcome: models.Skipped, Detail: "no display available"}
		return
	}
	stageLog.Info("display available", logger.String("display", display))

	v = r.cycle(ctx, stageLog, t, launcher, cycleSpec{
		Headless: false,
		Title:    t.HeadfulTitle,
		LogFile:  r.stageLogFile(t, "headful"),
		Env:      env,
	})
	result.Stages[2] = models.StageResult{Name: StageWebDriverHeadful, Outcome: v.outcome, Detail: v.detail}
	if v.err != nil {
		r.logFailure(stageLog, v.err)
		if result.Error == nil {
			result.Error = v.err
		}
	}
}

func (r *Runner) cliHeadless(ctx context.Context, log logger.Logger, browserCmd string, env []string) (string, error) {
	log.Info("checking headless CLI", logger.String("command", browserCmd))

	out, err := r.cmd.Run(ctx, browserCmd, []string{"--headless", "--version"}, &exec.Options{
		Env:     env,
		Timeout: r.settings.CLITimeout,
	})
	if out != nil {
		logOutput(log, out)
	}
	if err != nil {
		return "", errors.Wrap(err, "headless CLI check failed")
	}

	version := out.FirstLine()
	log.Info("headless CLI works", logger.String("version", version))
	return version, nil
}

// screenshot is best effort. Its result is logged and never recorded.
func (r *Runner) screenshot(ctx context.Context, log logger.Logger, t models.Target, browserCmd string, env []string) {
	if r.settings.ScreenshotDir == "" || r.settings.ScreenshotURL == "" {
		return
	}

	path := filepath.Join(r.settings.ScreenshotDir, fmt.Sprintf("%s_cli_test.png", t.Engine))
	_ = os.Remove(path)

	out, err := r.cmd.Run(ctx, browserCmd, screenshotArgs(t.Engine, path, r.settings.ScreenshotURL, t.Launch), &exec.Options{
		Env:     env,
		Timeout: r.settings.ScreenshotTimeout,
	})
	if out != nil {
		logOutput(log, out)
	}
	switch {
	case err != nil:
		log.Warn("headless screenshot failed", logger.Err(err))
	case r.fileExists(path):
		log.Info("headless screenshot captured", logger.String("path", path))
	default:
		log.Warn("headless screenshot missing", logger.String("path", path))
	}
}

func screenshotArgs(engine models.Engine, path, url string, launch models.LaunchConfig) []string {
	if engine == models.EngineChromium {
		args := []string{"--headless=new", "--screenshot=" + path}
		if launch.Width > 0 && launch.Height > 0 {
			args = append(args, fmt.Sprintf("--window-size=%d,%d", launch.Width, launch.Height))
		}
		return append(args, url)
	}
	return []string{"--headless", "--screenshot", path, url}
}

func (r *Runner) stageLogFile(t models.Target, mode string) string {
	if r.settings.LogDir == "" {
		return ""
	}
	name := t.Name
	if t.RequiresDriver() {
		name = filepath.Base(t.Driver.Command)
	}
	return filepath.Join(r.settings.LogDir, fmt.Sprintf("%s_%s.log", name, mode))
}

func (r *Runner) display(env []string) (string, bool) {
	for _, key := range r.settings.DisplayEnv {
		if v, ok := exec.LookupEnv(env, key); ok {
			return key + "=" + v, true
		}
	}
	return "", false
}

func logOutput(log logger.Logger, out *exec.Output) {
	if out.Stdout != "" {
		log.Debug("stdout", logger.String("output", out.Stdout))
	}
	if out.Stderr != "" {
		log.Debug("stderr", logger.String("output", out.Stderr))
	}
}

// progressiveOutcome folds stage outcomes into the target outcome. Any
// failed stage fails the target. A target where no stage passed is skipped.
func progressiveOutcome(stages []models.StageResult) (models.Outcome, string) {
	passed := 0
	for _, s := range stages {
		if s.Outcome == models.Failed {
			return models.Failed, s.Name + ": " + s.Detail
		}
		if s.Outcome == models.Passed {
			passed++
		}
	}
	if passed == 0 {
		return models.Skipped, "no stage ran"
	}
	return models.Passed, fmt.Sprintf("%d of %d stages passed", passed, len(stages))
}
