package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const DefaultFileName = "browserprobe.yml"

type Config struct {
	LogDir      string                  `koanf:"log_dir"`
	Timeouts    Timeouts                `koanf:"timeouts"`
	Window      Window                  `koanf:"window"`
	DisplayEnv  []string                `koanf:"display_env"`
	Env         map[string]string       `koanf:"env"`
	Progressive ProgressiveConfig       `koanf:"progressive"`
	Targets     map[string]TargetConfig `koanf:"targets"`

	path string
}

type Timeouts struct {
	Version    time.Duration `koanf:"version"`
	CLI        time.Duration `koanf:"cli"`
	Screenshot time.Duration `koanf:"screenshot"`
	// Session bounds one whole launch-load-verify cycle. Zero leaves the
	// automation library defaults in charge.
	Session time.Duration `koanf:"session"`
}

type Window struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

type ProgressiveConfig struct {
	ScreenshotDir string `koanf:"screenshot_dir"`
	ScreenshotURL string `koanf:"screenshot_url"`
}

// Load reads path, or DefaultFileName from the working directory when path
// is empty. A missing default file yields the built-in configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat config %s", path)
		}
		cfg.SetDefaults()
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "failed to read config at %s", path)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config at %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.path = abs

	cfg.SetDefaults()
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.LogDir == "" {
		c.LogDir = "/app/logs"
	}
	if c.Timeouts.Version == 0 {
		c.Timeouts.Version = 5 * time.Second
	}
	if c.Timeouts.CLI == 0 {
		c.Timeouts.CLI = 15 * time.Second
	}
	if c.Timeouts.Screenshot == 0 {
		c.Timeouts.Screenshot = 30 * time.Second
	}
	if c.Window.Width == 0 {
		c.Window.Width = 1366
	}
	if c.Window.Height == 0 {
		c.Window.Height = 768
	}
	if len(c.DisplayEnv) == 0 {
		c.DisplayEnv = []string{"DISPLAY"}
	}
	if c.Env == nil {
		c.Env = make(map[string]string)
	}
	if c.Progressive.ScreenshotDir == "" {
		c.Progressive.ScreenshotDir = os.TempDir()
	}
	if c.Progressive.ScreenshotURL == "" {
		c.Progressive.ScreenshotURL = "https://example.com"
	}
	if c.Targets == nil {
		c.Targets = make(map[string]TargetConfig)
	}
}

// Path is the absolute path of the loaded config file, or empty when the
// built-in defaults are in use.
func (c *Config) Path() string {
	return c.path
}
