package models

type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
)

type Backend string

const (
	BackendWebDriver  Backend = "webdriver"
	BackendDevTools   Backend = "devtools"
	BackendPlaywright Backend = "playwright"
)

type Target struct {
	Name           string            `json:"name"`
	Label          string            `json:"label"`
	Engine         Engine            `json:"engine"`
	Backend        Backend           `json:"backend"`
	Enabled        bool              `json:"enabled"`
	DisabledReason string            `json:"disabled_reason,omitempty"`
	Driver         DriverSpec        `json:"driver"`
	Browser        BrowserSpec       `json:"browser"`
	Launch         LaunchConfig      `json:"launch"`
	Title          string            `json:"title"`
	HeadfulTitle   string            `json:"headful_title,omitempty"`
	Progressive    bool              `json:"progressive"`
	Env            map[string]string `json:"env,omitempty"`
}

// DriverSpec describes the automation driver a target needs. An empty
// Command means the backend brings its own driver.
type DriverSpec struct {
	Label   string   `json:"label,omitempty"`
	Command string   `json:"command,omitempty"`
	Paths   []string `json:"paths,omitempty"`
}

// BrowserSpec is satisfied either by the first available command in
// Commands or, when Path is set, by Path existing on disk.
type BrowserSpec struct {
	Label    string   `json:"label,omitempty"`
	Commands []string `json:"commands,omitempty"`
	Path     string   `json:"path,omitempty"`
}

type LaunchConfig struct {
	Headless bool     `json:"headless"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Args     []string `json:"args,omitempty"`
	Binary   string   `json:"binary,omitempty"`
}

func (t *Target) RequiresDriver() bool {
	return t.Driver.Command != ""
}

func (d DriverSpec) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Command
}

func (b BrowserSpec) DisplayName() string {
	if b.Label != "" {
		return b.Label
	}
	if len(b.Commands) > 0 {
		return b.Commands[0]
	}
	return b.Path
}
