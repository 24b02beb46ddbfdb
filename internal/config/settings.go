package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Setting keys, also reachable as KAIROS_<KEY> environment variables.
const (
	KeyBindAddr    = "bind_addr"
	KeyPort        = "port"
	KeyCitiesFile  = "cities_file"
	KeyCitiesURL   = "cities_url"
	KeyCORSOrigins = "cors_origins"
	KeyLanguage    = "language"
	KeyDebug       = "debug"
)

// Settings is the runtime configuration of the headless surfaces (API server, terminal board).
type Settings struct {
	BindAddr    string
	Port        string
	CitiesFile  string
	CitiesURL   string
	CORSOrigins []string
	Language    string
	Debug       bool
}

// Addr returns the listen address of the API server.
func (s Settings) Addr() string {
	return s.BindAddr + AddrSeparator + s.Port
}

// Validate checks the values that cannot be recovered at runtime.
func (s Settings) Validate() error {
	return ValidatePort(s.Port)
}

// ValidatePort enforces a numeric TCP port in the 1-65535 range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// SettingsSource owns the viper instance and the last valid Settings snapshot.
type SettingsSource struct {
	v    *viper.Viper
	path string

	mu       sync.RWMutex
	current  Settings
	onChange func(Settings)
}

// LoadSettings reads the optional settings file at path and the KAIROS_* environment.
// An empty path means environment and defaults only.
func LoadSettings(path string) (*SettingsSource, error) {
	v := viper.New()
	v.SetDefault(KeyBindAddr, DefaultBindAddr)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyCORSOrigins, []string{"*"})
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
		}
	}

	src := &SettingsSource{v: v, path: path}
	s, err := src.snapshot()
	if err != nil {
		return nil, err
	}
	src.current = s
	return src, nil
}

// Current returns the last valid settings.
func (s *SettingsSource) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Watch reloads the file on change and hands every valid snapshot to fn.
// Invalid edits are logged and the previous snapshot is kept.
func (s *SettingsSource) Watch(fn func(Settings)) {
	if s.path == "" {
		return
	}
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()

	s.v.OnConfigChange(func(_ fsnotify.Event) {
		if err := s.reload(); err != nil {
			slog.Error(MsgSettingsFailed,
				LogKeyComponent, CompSettings,
				LogKeyFile, s.path,
				LogKeyError, err)
			return
		}
		slog.Info(MsgSettingsReload, LogKeyComponent, CompSettings, LogKeyFile, s.path)
	})
	s.v.WatchConfig()
}

func (s *SettingsSource) reload() error {
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	next, err := s.snapshot()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = next
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return nil
}

func (s *SettingsSource) snapshot() (Settings, error) {
	out := Settings{
		BindAddr:    s.v.GetString(KeyBindAddr),
		Port:        s.v.GetString(KeyPort),
		CitiesFile:  s.v.GetString(KeyCitiesFile),
		CitiesURL:   s.v.GetString(KeyCitiesURL),
		CORSOrigins: splitList(s.v.GetStringSlice(KeyCORSOrigins)),
		Language:    s.v.GetString(KeyLanguage),
		Debug:       s.v.GetBool(KeyDebug),
	}
	if err := out.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return out, nil
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
