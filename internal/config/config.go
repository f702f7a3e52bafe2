package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.msgr/config.toml.
type Config struct {
	DefaultProfile string      `toml:"default_profile"`
	Backup         Backup      `toml:"backup"`
	Analytics      Analytics   `toml:"analytics"`
	Permissions    Permissions `toml:"permissions"`
}

// Backup controls the archive engine and its schedule.
type Backup struct {
	Auto     bool   `toml:"auto"`
	Schedule string `toml:"schedule"` // cron expression, minute granularity
	Keep     int    `toml:"keep"`     // archives retained per profile, 0 = unlimited
}

// Analytics toggles local usage event recording.
type Analytics struct {
	Enabled bool `toml:"enabled"`
}

// Permissions declares which host capabilities are granted. A terminal
// host has no telephony radio, so the send/call grants default off.
type Permissions struct {
	DefaultSMS bool `toml:"default_sms"`
	ReadSMS    bool `toml:"read_sms"`
	SendSMS    bool `toml:"send_sms"`
	Contacts   bool `toml:"contacts"`
	Phone      bool `toml:"phone"`
	Calling    bool `toml:"calling"`
	Storage    bool `toml:"storage"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		DefaultProfile: "",
		Backup:         Backup{Auto: false, Schedule: "0 3 * * *", Keep: 10},
		Analytics:      Analytics{Enabled: true},
		Permissions: Permissions{
			ReadSMS:  true,
			Contacts: true,
			Storage:  true,
		},
	}
}

// Load reads config from the given path. Returns an error if the file
// is missing; callers fall back to Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
