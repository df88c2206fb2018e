package probe

import (
	"context"
	"html"
	"net/url"
	"os"
	osexec "os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/browser"
	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/models"
)

type fakeResult struct {
	out *exec.Output
	err error
}

// fakeCommands answers Run by exact command line. Anything unknown behaves
// like a binary missing from PATH.
type fakeCommands struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{results: make(map[string]fakeResult)}
}

func (f *fakeCommands) ok(line, stdout string) *fakeCommands {
	f.results[line] = fakeResult{out: &exec.Output{Stdout: stdout}}
	return f
}

func (f *fakeCommands) fail(line string, err error) *fakeCommands {
	f.results[line] = fakeResult{out: &exec.Output{}, err: err}
	return f
}

func (f *fakeCommands) Run(_ context.Context, name string, args []string, _ *exec.Options) (*exec.Output, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)

	r, ok := f.results[line]
	if !ok {
		return nil, &osexec.Error{Name: name, Err: osexec.ErrNotFound}
	}
	return r.out, r.err
}

func (f *fakeCommands) called(line string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == line {
			return true
		}
	}
	return false
}

var titlePattern = regexp.MustCompile(`<title>(.*)</title>`)

// fakeLauncher hands out sessions that read the loaded page from disk, the
// way a real browser would.
type fakeLauncher struct {
	launchErr   error
	headlessErr error
	navigateErr error
	title       string
	block       bool

	launches []browser.Options
	sessions []*fakeSession
}

func (l *fakeLauncher) Launch(ctx context.Context, opts browser.Options) (browser.Session, error) {
	l.launches = append(l.launches, opts)
	if l.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	if opts.Headless && l.headlessErr != nil {
		return nil, l.headlessErr
	}

	s := &fakeSession{title: l.title, navigateErr: l.navigateErr}
	l.sessions = append(l.sessions, s)
	return s, nil
}

type fakePreflightLauncher struct {
	fakeLauncher
	preflightErr error
}

func (l *fakePreflightLauncher) Preflight(context.Context) (string, error) {
	if l.preflightErr != nil {
		return "", l.preflightErr
	}
	return "Version 1.52.0", nil
}

type fakeSession struct {
	title       string
	navigateErr error

	url    string
	page   string
	closed int
}

func (s *fakeSession) Navigate(_ context.Context, rawURL string) error {
	s.url = rawURL
	if s.navigateErr != nil {
		return s.navigateErr
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(u.Path)
	if err != nil {
		return errors.Wrap(err, "page not found")
	}
	s.page = string(b)
	return nil
}

func (s *fakeSession) Title(context.Context) (string, error) {
	if s.title != "" {
		return s.title, nil
	}
	m := titlePattern.FindStringSubmatch(s.page)
	if m == nil {
		return "", nil
	}
	return html.UnescapeString(m[1]), nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

func (s *fakeSession) Product() string {
	return "fake 1.0"
}

func (s *fakeSession) pagePath() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return ""
	}
	return u.Path
}

func launcherFor(l browser.Launcher) LauncherFactory {
	return func(models.Backend) (browser.Launcher, error) {
		return l, nil
	}
}

func existing(paths ...string) func(string) bool {
	return func(p string) bool {
		for _, e := range paths {
			if e == p {
				return true
			}
		}
		return false
	}
}

func chromeTarget() models.Target {
	return models.Target{
		Name:    "chrome_webdriver",
		Label:   "Chrome WebDriver",
		Engine:  models.EngineChromium,
		Backend: models.BackendWebDriver,
		Enabled: true,
		Driver:  models.DriverSpec{Label: "ChromeDriver", Command: "chromedriver"},
		Browser: models.BrowserSpec{Label: "Chrome", Commands: []string{"google-chrome", "chromium"}},
		Launch: models.LaunchConfig{
			Headless: true,
			Width:    1366,
			Height:   768,
			Args:     []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"},
		},
		Title: "Chrome WebDriver Test",
	}
}

func firefoxTarget() models.Target {
	return models.Target{
		Name:    "firefox_webdriver",
		Label:   "Firefox WebDriver",
		Engine:  models.EngineFirefox,
		Backend: models.BackendWebDriver,
		Enabled: true,
		Driver:  models.DriverSpec{Label: "GeckoDriver", Command: "geckodriver"},
		Browser: models.BrowserSpec{Label: "Firefox", Commands: []string{"firefox"}},
		Launch: models.LaunchConfig{
			Headless: true,
			Width:    1366,
			Height:   768,
			Binary:   "/usr/local/bin/firefox",
		},
		Title:        "Firefox WebDriver Test",
		HeadfulTitle: "Firefox WebDriver Headful Test",
		Progressive:  true,
	}
}

func chromeCommands() *fakeCommands {
	return newFakeCommands().
		ok("chromedriver --version", "ChromeDriver 126.0.6478.126\n").
		ok("google-chrome --version", "Google Chrome 126.0.6478.126\n")
}

func firefoxCommands() *fakeCommands {
	return newFakeCommands().
		ok("geckodriver --version", "geckodriver 0.34.0\n\nThis program is subject to the terms of the MPL\n").
		ok("firefox --version", "Mozilla Firefox 127.0\n").
		ok("firefox --headless --version", "Mozilla Firefox 127.0\n")
}

func testSettings(dir string) Settings {
	return Settings{
		VersionTimeout:    time.Second,
		CLITimeout:        time.Second,
		ScreenshotTimeout: time.Second,
		DisplayEnv:        []string{"DISPLAY", "WAYLAND_DISPLAY"},
		FixtureDir:        dir,
	}
}
