// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration. Processor, Shortcuts and
// Devices together form the settings unit the control surface applies to the
// running processor.
type Config struct {
	Processor ProcessorConfig `mapstructure:"processor"`

	Shortcuts ShortcutsConfig `mapstructure:"shortcuts"`

	// Per-device policies keyed by stable device id
	Devices map[string]DeviceSettings `mapstructure:"devices"`

	Daemon DaemonConfig `mapstructure:"daemon"`
}

// ProcessorConfig tunes the event-processing loop.
type ProcessorConfig struct {
	// Events without a device identity are merged into the active device
	// when they arrive within this window of its last activity. Negative
	// disables merging.
	MergeUnassociatedEventsMs int `mapstructure:"merge_unassociated_events_ms"`

	// Minimum interval between forced rescans; explicit scan requests and
	// stale-topology recovery bypass it.
	DeviceRescanIntervalMs  uint64 `mapstructure:"device_rescan_interval_ms"`
	MonitorRescanIntervalMs uint64 `mapstructure:"monitor_rescan_interval_ms"`
}

// ShortcutsConfig holds global shortcut bindings. Empty strings leave the
// action unbound.
type ShortcutsConfig struct {
	LockCurrentMouse string `mapstructure:"lock_current_mouse"`
	JumpNextMonitor  string `mapstructure:"jump_next_monitor"`
}

// DeviceSettings is the per-device user policy.
type DeviceSettings struct {
	// Clamp the cursor to the monitor the device currently occupies
	LockedInMonitor bool `mapstructure:"locked_in_monitor"`
	// Restore the device's last cursor position when it becomes active again
	RememberPos bool `mapstructure:"remember_pos"`
}

// DaemonConfig contains daemon-side options.
type DaemonConfig struct {
	// Interval of the periodic status refresh injected by the reactor timer
	StatusRefreshMs int `mapstructure:"status_refresh_ms"`
}

// DeviceSettingItem is an incremental policy update for one device. Nil
// fields leave the current value in place.
type DeviceSettingItem struct {
	ID              string `json:"id"`
	LockedInMonitor *bool  `json:"locked_in_monitor,omitempty"`
	RememberPos     *bool  `json:"remember_pos,omitempty"`
}

// Merged applies the item on top of the current policy.
func (s DeviceSettings) Merged(item DeviceSettingItem) DeviceSettings {
	if item.LockedInMonitor != nil {
		s.LockedInMonitor = *item.LockedInMonitor
	}
	if item.RememberPos != nil {
		s.RememberPos = *item.RememberPos
	}
	return s
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Processor: ProcessorConfig{
			MergeUnassociatedEventsMs: 5,
			DeviceRescanIntervalMs:    1000,
			MonitorRescanIntervalMs:   1000,
		},
		Shortcuts: ShortcutsConfig{
			LockCurrentMouse: "",
			JumpNextMonitor:  "",
		},
		Devices: map[string]DeviceSettings{},
		Daemon: DaemonConfig{
			StatusRefreshMs: 1000,
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("mousemux")
	viper.SetConfigType("yaml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mousemux"))
		}
		viper.AddConfigPath("/etc/mousemux")
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("processor.merge_unassociated_events_ms", DefaultConfig.Processor.MergeUnassociatedEventsMs)
	viper.SetDefault("processor.device_rescan_interval_ms", DefaultConfig.Processor.DeviceRescanIntervalMs)
	viper.SetDefault("processor.monitor_rescan_interval_ms", DefaultConfig.Processor.MonitorRescanIntervalMs)

	viper.SetDefault("shortcuts.lock_current_mouse", DefaultConfig.Shortcuts.LockCurrentMouse)
	viper.SetDefault("shortcuts.jump_next_monitor", DefaultConfig.Shortcuts.JumpNextMonitor)

	viper.SetDefault("devices", DefaultConfig.Devices)

	viper.SetDefault("daemon.status_refresh_ms", DefaultConfig.Daemon.StatusRefreshMs)

	// Read config file if it exists. With an explicit path viper reports
	// an absent file as a plain *fs.PathError, not ConfigFileNotFoundError.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if cfg.Devices == nil {
		cfg.Devices = map[string]DeviceSettings{}
	}

	return nil
}

// Clone returns a copy with its own Devices map, so a snapshot handed to
// another goroutine never aliases its source.
func (c Config) Clone() Config {
	devices := make(map[string]DeviceSettings, len(c.Devices))
	for id, ds := range c.Devices {
		devices[id] = ds
	}
	c.Devices = devices
	return c
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Not initialized yet, start from a private copy of the defaults
		c := DefaultConfig.Clone()
		cfg = &c
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// DeviceFor returns the policy for a device id, zero policy when unset.
func (c *Config) DeviceFor(id string) DeviceSettings {
	return c.Devices[id]
}

// UpdateDevice stores a per-device policy and persists the configuration.
func UpdateDevice(id string, ds DeviceSettings) error {
	c := Get()
	if c.Devices == nil {
		c.Devices = map[string]DeviceSettings{}
	}
	c.Devices[id] = ds
	viper.Set("devices", c.Devices)
	return Save()
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/mousemux/mousemux.yaml"
	}

	return filepath.Join(home, ".config", "mousemux", "mousemux.yaml")
}
