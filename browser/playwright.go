package browser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"

	"github.com/vcnkl/browserprobe/models"
)

// PlaywrightLauncher uses the Playwright driver and the browsers it manages.
// It never installs anything on its own; see InstallPlaywright.
type PlaywrightLauncher struct{}

func NewPlaywrightLauncher() *PlaywrightLauncher {
	return &PlaywrightLauncher{}
}

func (l *PlaywrightLauncher) Preflight(ctx context.Context) (string, error) {
	driver, err := playwright.NewDriver(&playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
	})
	if err != nil {
		return "", errors.Wrap(err, "playwright driver unavailable")
	}

	out, err := await(ctx, func() ([]byte, error) {
		return driver.Command("--version").Output()
	})
	if err != nil {
		return "", errors.Wrap(err, "playwright driver is not installed")
	}
	return strings.TrimSpace(string(out)), nil
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}

	pw, err := acquire(ctx, func() (*playwright.Playwright, error) {
		return playwright.Run(&playwright.RunOptions{
			SkipInstallBrowsers: true,
			Verbose:             false,
			Stdout:              out,
			Stderr:              out,
		})
	}, func(pw *playwright.Playwright) { _ = pw.Stop() })
	if err != nil {
		return nil, errors.Wrap(err, "failed to start playwright")
	}

	var browserType playwright.BrowserType
	switch opts.Engine {
	case models.EngineFirefox:
		browserType = pw.Firefox
	case models.EngineChromium:
		browserType = pw.Chromium
	default:
		pw.Stop()
		return nil, fmt.Errorf("playwright: unsupported engine %s", opts.Engine)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	}
	if opts.Binary != "" {
		launchOpts.ExecutablePath = playwright.String(opts.Binary)
	}
	if env := envMap(opts.Env); env != nil {
		launchOpts.Env = env
	}

	b, err := acquire(ctx, func() (playwright.Browser, error) {
		return browserType.Launch(launchOpts)
	}, func(b playwright.Browser) {
		_ = b.Close()
		_ = pw.Stop()
	})
	if err != nil {
		pw.Stop()
		return nil, errors.Wrapf(err, "failed to launch %s", browserType.Name())
	}

	page, err := b.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
	})
	if err != nil {
		_ = b.Close()
		pw.Stop()
		return nil, errors.Wrap(err, "failed to open page")
	}

	return &playwrightSession{pw: pw, browser: b, page: page}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func (s *playwrightSession) Product() string {
	return s.browser.BrowserType().Name() + " " + s.browser.Version()
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	_, err := await(ctx, func() (playwright.Response, error) {
		return s.page.Goto(url)
	})
	return err
}

func (s *playwrightSession) Title(ctx context.Context) (string, error) {
	return await(ctx, s.page.Title)
}

func (s *playwrightSession) Close() error {
	_ = s.page.Close()
	closeErr := s.browser.Close()
	stopErr := s.pw.Stop()
	if closeErr != nil {
		return errors.Wrap(closeErr, "failed to close browser")
	}
	if stopErr != nil {
		return errors.Wrap(stopErr, "failed to stop playwright")
	}
	return nil
}

// InstallPlaywright downloads the Playwright driver and the given browsers.
func InstallPlaywright(browsers []string, stdout, stderr io.Writer) error {
	err := playwright.Install(&playwright.RunOptions{
		Browsers: browsers,
		Verbose:  true,
		Stdout:   stdout,
		Stderr:   stderr,
	})
	if err != nil {
		return errors.Wrap(err, "failed to install playwright")
	}
	return nil
}
