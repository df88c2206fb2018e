package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vcnkl/browserprobe/models"
)

// TargetConfig overlays a built-in target of the same name or, when the name
// is new, declares an additional target.
type TargetConfig struct {
	Label        string            `koanf:"label"`
	Engine       string            `koanf:"engine"`
	Backend      string            `koanf:"backend"`
	Enabled      *bool             `koanf:"enabled"`
	Driver       *DriverConfig     `koanf:"driver"`
	Browser      *BrowserConfig    `koanf:"browser"`
	Headless     *bool             `koanf:"headless"`
	Args         []string          `koanf:"args"`
	Binary       string            `koanf:"binary"`
	Title        string            `koanf:"title"`
	HeadfulTitle string            `koanf:"headful_title"`
	Progressive  *bool             `koanf:"progressive"`
	Env          map[string]string `koanf:"env"`
}

type DriverConfig struct {
	Label   string   `koanf:"label"`
	Command string   `koanf:"command"`
	Paths   []string `koanf:"paths"`
}

type BrowserConfig struct {
	Label    string   `koanf:"label"`
	Commands []string `koanf:"commands"`
	Path     string   `koanf:"path"`
}

var chromiumArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
}

func chromeDriver() models.DriverSpec {
	return models.DriverSpec{
		Label:   "ChromeDriver",
		Command: "chromedriver",
		Paths:   []string{"/usr/local/bin/chromedriver", "/usr/bin/chromedriver"},
	}
}

// DefaultTargets is the built-in catalogue in display order.
func DefaultTargets() []models.Target {
	return []models.Target{
		{
			Name:    "chrome_webdriver",
			Label:   "Chrome",
			Engine:  models.EngineChromium,
			Backend: models.BackendWebDriver,
			Enabled: true,
			Driver:  chromeDriver(),
			Browser: models.BrowserSpec{
				Label:    "Chrome",
				Commands: []string{"google-chrome", "chromium"},
			},
			Launch: models.LaunchConfig{
				Headless: true,
				Args:     append([]string(nil), chromiumArgs...),
			},
			Title: "Chrome WebDriver Test",
		},
		{
			Name:    "firefox_webdriver",
			Label:   "Firefox",
			Engine:  models.EngineFirefox,
			Backend: models.BackendWebDriver,
			Enabled: true,
			Driver: models.DriverSpec{
				Label:   "GeckoDriver",
				Command: "geckodriver",
				Paths:   []string{"/usr/local/bin/geckodriver", "/usr/bin/geckodriver"},
			},
			Browser: models.BrowserSpec{
				Label:    "Firefox",
				Commands: []string{"firefox"},
			},
			Launch: models.LaunchConfig{
				Headless: true,
				Binary:   "/usr/local/bin/firefox",
			},
			Title:        "Firefox WebDriver Test",
			HeadfulTitle: "Firefox WebDriver Headful Test",
			Progressive:  true,
		},
		{
			Name:    "brave_webdriver",
			Label:   "Brave",
			Engine:  models.EngineChromium,
			Backend: models.BackendWebDriver,
			Enabled: true,
			Driver:  chromeDriver(),
			Browser: models.BrowserSpec{
				Label: "Brave",
				Path:  "/usr/bin/brave-browser",
			},
			Launch: models.LaunchConfig{
				Headless: true,
				Args:     append(append([]string(nil), chromiumArgs...), "--disable-brave-update"),
				Binary:   "/usr/bin/brave-browser",
			},
			Title: "Brave WebDriver Test",
		},
		{
			Name:           "playwright",
			Label:          "Playwright",
			Engine:         models.EngineChromium,
			Backend:        models.BackendPlaywright,
			Enabled:        false,
			DisabledReason: "initialization timeout issue; enable with --include playwright",
			Launch: models.LaunchConfig{
				Headless: true,
				Args:     append([]string(nil), chromiumArgs...),
			},
			Title: "Playwright Test",
		},
	}
}

// ResolveTargets merges the catalogue with the config overlays and applies
// include/exclude selections. Built-in targets keep their order; extra
// targets follow, sorted by name.
func (c *Config) ResolveTargets(include, exclude []string) ([]models.Target, error) {
	targets := DefaultTargets()
	index := make(map[string]int, len(targets))
	for i, t := range targets {
		index[t.Name] = i
	}

	extra := make([]string, 0)
	for name := range c.Targets {
		if _, ok := index[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		index[name] = len(targets)
		targets = append(targets, models.Target{Name: name, Enabled: true})
	}

	for name, overlay := range c.Targets {
		overlay.apply(&targets[index[name]])
	}

	for _, name := range include {
		i, ok := index[name]
		if !ok {
			return nil, &UnknownTargetError{Name: name}
		}
		targets[i].Enabled = true
		targets[i].DisabledReason = ""
	}
	for _, name := range exclude {
		i, ok := index[name]
		if !ok {
			return nil, &UnknownTargetError{Name: name}
		}
		targets[i].Enabled = false
		targets[i].DisabledReason = "excluded on the command line"
	}

	for i := range targets {
		targets[i].Launch.Width = c.Window.Width
		targets[i].Launch.Height = c.Window.Height
		if targets[i].Label == "" {
			targets[i].Label = targets[i].Name
		}
		if err := validate(&targets[i]); err != nil {
			return nil, err
		}
	}

	return targets, nil
}

func (o TargetConfig) apply(t *models.Target) {
	if o.Label != "" {
		t.Label = o.Label
	}
	if o.Engine != "" {
		t.Engine = models.Engine(o.Engine)
	}
	if o.Backend != "" && models.Backend(o.Backend) != t.Backend {
		t.Backend = models.Backend(o.Backend)
		if t.Backend != models.BackendWebDriver && o.Driver == nil {
			t.Driver = models.DriverSpec{}
		}
	}
	if o.Enabled != nil {
		t.Enabled = *o.Enabled
		if t.Enabled {
			t.DisabledReason = ""
		} else if t.DisabledReason == "" {
			t.DisabledReason = "disabled in config"
		}
	}
	if o.Driver != nil {
		t.Driver = models.DriverSpec{
			Label:   o.Driver.Label,
			Command: o.Driver.Command,
			Paths:   o.Driver.Paths,
		}
	}
	if o.Browser != nil {
		t.Browser = models.BrowserSpec{
			Label:    o.Browser.Label,
			Commands: o.Browser.Commands,
			Path:     o.Browser.Path,
		}
	}
	if o.Headless != nil {
		t.Launch.Headless = *o.Headless
	}
	if o.Args != nil {
		t.Launch.Args = o.Args
	}
	if o.Binary != "" {
		t.Launch.Binary = o.Binary
	}
	if o.Title != "" {
		t.Title = o.Title
	}
	if o.HeadfulTitle != "" {
		t.HeadfulTitle = o.HeadfulTitle
	}
	if o.Progressive != nil {
		t.Progressive = *o.Progressive
	}
	if len(o.Env) > 0 {
		if t.Env == nil {
			t.Env = make(map[string]string, len(o.Env))
		}
		for k, v := range o.Env {
			t.Env[k] = v
		}
	}
}

func validate(t *models.Target) error {
	switch t.Engine {
	case models.EngineChromium, models.EngineFirefox:
	default:
		return &InvalidTargetError{Name: t.Name, Reason: fmt.Sprintf("unknown engine %q", t.Engine)}
	}

	switch t.Backend {
	case models.BackendWebDriver:
		if !t.RequiresDriver() {
			return &InvalidTargetError{Name: t.Name, Reason: "webdriver backend needs a driver command"}
		}
	case models.BackendDevTools:
		if t.Engine != models.EngineChromium {
			return &InvalidTargetError{Name: t.Name, Reason: "devtools backend only drives chromium"}
		}
	case models.BackendPlaywright:
	default:
		return &InvalidTargetError{Name: t.Name, Reason: fmt.Sprintf("unknown backend %q", t.Backend)}
	}

	if strings.TrimSpace(t.Title) == "" {
		return &InvalidTargetError{Name: t.Name, Reason: "expected title is empty"}
	}
	if t.Progressive && t.HeadfulTitle == "" {
		t.HeadfulTitle = t.Title
	}

	return nil
}

type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return "unknown target: " + e.Name
}

type InvalidTargetError struct {
	Name   string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %s: %s", e.Name, e.Reason)
}
