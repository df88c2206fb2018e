package actions

import (
	"context"
	"time"

	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/watcher"
)

// Suite runs the probes once, reloading whatever inputs it needs.
type Suite func(ctx context.Context) error

type WatchAction struct {
	files []string
	suite Suite
	delay time.Duration
	log   logger.Logger
}

func NewWatchAction(files []string, suite Suite, log logger.Logger) *WatchAction {
	return &WatchAction{
		files: files,
		suite: suite,
		delay: watcher.DefaultDelay,
		log:   log,
	}
}

func (a *WatchAction) WithDelay(d time.Duration) *WatchAction {
	a.delay = d
	return a
}

// Execute runs the suite, then again after every change to the watched
// files, until ctx is done. Runs never overlap; changes made during a run
// collapse into a single rerun.
func (a *WatchAction) Execute(ctx context.Context) error {
	w, err := watcher.NewWatcher(a.files, a.delay, a.log)
	if err != nil {
		return err
	}
	defer w.Stop()

	pending := make(chan string, 1)
	w.OnChange(func(path string) {
		select {
		case pending <- path:
		default:
		}
	})

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(ctx)
	}()

	last := a.fingerprint()
	a.runSuite(ctx)
	a.log.Info("watching for changes", logger.Strings("files", a.files))

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutting down...")
			return nil
		case err = <-watchErr:
			return err
		case path := <-pending:
			current := a.fingerprint()
			if current != "" && current == last {
				a.log.Debug("content unchanged, not rerunning", logger.String("path", path))
				continue
			}
			last = current

			a.log.Info("file changed, rerunning probes...", logger.String("path", path))
			a.runSuite(ctx)
		}
	}
}

// fingerprint returns "" when the files cannot be hashed, which always
// counts as a change.
func (a *WatchAction) fingerprint() string {
	fp, err := watcher.Fingerprint(a.files)
	if err != nil {
		a.log.Warn("failed to hash watched files", logger.Err(err))
		return ""
	}
	return fp
}

func (a *WatchAction) runSuite(ctx context.Context) {
	if err := a.suite(ctx); err != nil {
		a.log.Error("probe run failed", logger.Err(err))
	}
}
