// Package config resolves Mudra's runtime configuration from defaults,
// persisted settings and command-line flags, in that order.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// Setting keys persisted in the store.
const (
	KeyAddr      = "server.addr"
	KeyStaticDir = "server.static_dir"
	KeyDeviceID  = "camera.device_id"
	KeyWidth     = "camera.width"
	KeyHeight    = "camera.height"
	KeyFPS       = "camera.fps"
	KeyInterval  = "feed.interval"
)

// Config holds the resolved application configuration.
type Config struct {
	Addr      string
	DataDir   string
	StaticDir string

	DeviceID int
	Width    int
	Height   int
	FPS      int

	Interval time.Duration

	Headless   bool
	MockCamera bool
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return Config{
		Addr:     ":8080",
		DataDir:  dataDir,
		DeviceID: 0,
		Width:    640,
		Height:   480,
		FPS:      5,
		Interval: 2000 * time.Millisecond,
	}
}

// DBPath returns the settings database location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// flagKeys maps flag names to the setting they override.
var flagKeys = map[string]string{
	"addr":       KeyAddr,
	"static-dir": KeyStaticDir,
	"device":     KeyDeviceID,
	"width":      KeyWidth,
	"height":     KeyHeight,
	"fps":        KeyFPS,
	"interval":   KeyInterval,
}

// RegisterFlags binds c's fields to fs using c's current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory for the settings database")
	fs.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "serve the page from this directory instead of the embedded copy")
	fs.IntVar(&c.DeviceID, "device", c.DeviceID, "camera device index")
	fs.IntVar(&c.Width, "width", c.Width, "preferred capture width")
	fs.IntVar(&c.Height, "height", c.Height, "preferred capture height")
	fs.IntVar(&c.FPS, "fps", c.FPS, "preferred capture frame rate")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "interval between simulated predictions")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without the system tray")
	fs.BoolVar(&c.MockCamera, "mock-camera", c.MockCamera, "use a synthetic camera instead of a real device")
}

// ExplicitKeys returns the setting keys whose flags were set on the command line.
func ExplicitKeys(fs *flag.FlagSet) map[string]bool {
	keys := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			keys[key] = true
		}
	})
	return keys
}

// Apply overlays persisted settings onto c, skipping keys in skip.
// Unknown keys are ignored so newer databases still load.
func (c *Config) Apply(settings []store.Setting, skip map[string]bool) error {
	for _, s := range settings {
		if skip[s.Key] {
			continue
		}
		if err := c.Set(s.Key, s.Value); err != nil {
			return err
		}
	}
	return nil
}

// Set assigns a single setting by key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case KeyAddr:
		c.Addr = value
	case KeyStaticDir:
		c.StaticDir = value
	case KeyDeviceID:
		c.DeviceID, err = parseInt(key, value, 0)
	case KeyWidth:
		c.Width, err = parseInt(key, value, 1)
	case KeyHeight:
		c.Height, err = parseInt(key, value, 1)
	case KeyFPS:
		c.FPS, err = parseInt(key, value, 1)
	case KeyInterval:
		var d time.Duration
		d, err = time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("setting %s: interval must be positive, got %s", key, value)
		}
		c.Interval = d
	}
	return err
}

// Validate checks that a key is known and its value parses.
func Validate(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	c := Default()
	return c.Set(key, value)
}

// IsKnownKey reports whether key is a recognised setting.
func IsKnownKey(key string) bool {
	for _, k := range flagKeys {
		if k == key {
			return true
		}
	}
	return false
}

func parseInt(key, value string, lo int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	if n < lo {
		return 0, fmt.Errorf("setting %s: must be at least %d, got %d", key, lo, n)
	}
	return n, nil
}
