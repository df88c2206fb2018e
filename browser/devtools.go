package browser

import (
	"context"
	"fmt"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/models"
)

// DevToolsLauncher drives Chromium-family browsers directly over the
// DevTools protocol, without a driver binary.
type DevToolsLauncher struct{}

func NewDevToolsLauncher() *DevToolsLauncher {
	return &DevToolsLauncher{}
}

func (l *DevToolsLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if opts.Engine != models.EngineChromium {
		return nil, fmt.Errorf("devtools: unsupported engine %s", opts.Engine)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)

	var ctxOpts []chromedp.ContextOption
	if opts.LogOutput != nil {
		logf := func(format string, args ...any) {
			fmt.Fprintf(opts.LogOutput, format+"\n", args...)
		}
		ctxOpts = append(ctxOpts, chromedp.WithLogf(logf), chromedp.WithErrorf(logf))
	}
	browserCtx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)

	var product string
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var versionErr error
		_, product, _, _, _, versionErr = cdpbrowser.GetVersion().Do(ctx)
		return versionErr
	}))
	if err != nil {
		cancel()
		allocCancel()
		return nil, errors.Wrap(err, "failed to start browser over devtools")
	}

	return &devToolsSession{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		product:     product,
	}, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.Width > 0 && opts.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
	}
	for _, arg := range opts.Args {
		name, value := parseFlag(arg)
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	if opts.Binary != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.Binary))
	}
	if len(opts.Env) > 0 {
		allocOpts = append(allocOpts, chromedp.Env(opts.Env...))
	}
	if opts.LogOutput != nil {
		allocOpts = append(allocOpts, chromedp.CombinedOutput(opts.LogOutput))
	}
	return allocOpts
}

type devToolsSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	product     string
}

func (s *devToolsSession) Product() string {
	return s.product
}

func (s *devToolsSession) Navigate(ctx context.Context, url string) error {
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, chromedp.Run(s.ctx, chromedp.Navigate(url))
	})
	return err
}

func (s *devToolsSession) Title(ctx context.Context) (string, error) {
	return await(ctx, func() (string, error) {
		var title string
		err := chromedp.Run(s.ctx, chromedp.Title(&title))
		return title, err
	})
}

func (s *devToolsSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "failed to close browser")
	}
	return nil
}
