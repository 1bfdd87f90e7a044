package popstage

import (
	"fmt"
	"os"
	"time"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// Transition groups share one timing. The camera group drives position
// and rotation together.
const (
	TransitionCamera = "camera"
	TransitionDock   = "dock"
	TransitionMarker = "marker"
	TransitionLight  = "light"
)

// TransitionConfig is the duration and easing name of one transition group.
type TransitionConfig struct {
	Duration time.Duration `yaml:"duration"`
	Easing   string        `yaml:"easing"`
}

// Timing is a resolved TransitionConfig.
type Timing struct {
	Duration time.Duration
	Easing   ease.TweenFunc
}

// LightPreset is the target intensity of each light for one theme.
type LightPreset struct {
	Ambient float64 `yaml:"ambient"`
	Point   float64 `yaml:"point"`
}

// ThemeLights holds the light presets of both themes.
type ThemeLights struct {
	Dark  LightPreset `yaml:"dark"`
	Light LightPreset `yaml:"light"`
}

// For returns the preset of theme t.
func (l ThemeLights) For(t Theme) LightPreset {
	if t == ThemeLight {
		return l.Light
	}
	return l.Dark
}

// WindowConfig sizes the viewer window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// AnalysisConfig locates the analysis endpoint.
type AnalysisConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// NoticeConfig sizes the notice overlay.
type NoticeConfig struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// Config is the stage configuration, usually loaded from YAML.
type Config struct {
	Window      WindowConfig                `yaml:"window"`
	Analysis    AnalysisConfig              `yaml:"analysis"`
	Routes      map[RoutePath]Pose          `yaml:"routes"`
	Transitions map[string]TransitionConfig `yaml:"transitions"`
	// DockOpenOffset is the dock's Z offset when open.
	DockOpenOffset float64 `yaml:"dock_open_offset"`
	// MarkerSpacing is the marker's X step between consecutive routes.
	MarkerSpacing float64      `yaml:"marker_spacing"`
	Lights        ThemeLights  `yaml:"lights"`
	Theme         string       `yaml:"theme"`
	Notices       NoticeConfig `yaml:"notices"`
	ScreenshotDir string       `yaml:"screenshot_dir"`
	Debug         bool         `yaml:"debug"`
}

// DefaultConfig returns the configuration of the stock desk scene.
func DefaultConfig() *Config {
	return &Config{
		Window:   WindowConfig{Title: "popstage", Width: 1280, Height: 720},
		Analysis: AnalysisConfig{BaseURL: DefaultAnalysisBaseURL, Timeout: DefaultSubmitTimeout},
		Transitions: map[string]TransitionConfig{
			TransitionCamera: {Duration: time.Second, Easing: "power2.out"},
			TransitionDock:   {Duration: 2 * time.Second, Easing: "power2.out"},
			TransitionMarker: {Duration: time.Second, Easing: "power2.out"},
			TransitionLight:  {Duration: 800 * time.Millisecond, Easing: "power4"},
		},
		DockOpenOffset: 0.12,
		MarkerSpacing:  0.8,
		Lights: ThemeLights{
			Dark:  LightPreset{Ambient: 0.35, Point: 6},
			Light: LightPreset{Ambient: 1, Point: 12},
		},
		Theme:         "dark",
		Notices:       NoticeConfig{Capacity: defaultNoticeCap, TTL: 4 * time.Second},
		ScreenshotDir: "screenshots",
	}
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks ranges, route names and easing names.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("config: analysis timeout %v is negative", c.Analysis.Timeout)
	}
	for p := range c.Routes {
		if !p.Known() {
			return fmt.Errorf("config: unknown route %q", p)
		}
	}
	for name, tc := range c.Transitions {
		switch name {
		case TransitionCamera, TransitionDock, TransitionMarker, TransitionLight:
		default:
			return fmt.Errorf("config: unknown transition %q", name)
		}
		if tc.Duration < 0 {
			return fmt.Errorf("config: transition %q has negative duration", name)
		}
		if tc.Easing == "" {
			continue
		}
		if _, err := LookupEasing(tc.Easing); err != nil {
			return fmt.Errorf("config: transition %q: %w", name, err)
		}
	}
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("config: theme %q must be dark or light", c.Theme)
	}
	return nil
}

// RouteTable returns the default table with the configured overrides.
func (c *Config) RouteTable() (*RouteTable, error) {
	t := DefaultRouteTable()
	for p, pose := range c.Routes {
		if err := t.Set(p, pose); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return t, t.Validate()
}

// Timing resolves the named transition group. Missing groups complete
// instantly; a missing easing is linear.
func (c *Config) Timing(name string) Timing {
	tc, ok := c.Transitions[name]
	if !ok {
		return Timing{Easing: ease.Linear}
	}
	fn, err := LookupEasing(tc.Easing)
	if err != nil {
		fn = ease.Linear
	}
	return Timing{Duration: tc.Duration, Easing: fn}
}
