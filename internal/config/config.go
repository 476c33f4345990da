package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyPrimaryPackage   = "activation.primary_package"
	KeySecondaryPackage = "activation.secondary_package"
	KeyActivity         = "activation.activity"
	KeyGracePeriod      = "activation.grace_period"
	KeyOpener           = "activation.opener"
	KeyBundler          = "build.bundler"
	KeyDebounce         = "build.debounce"
	KeyLogFormat        = "log.format"
)

// Defaults.
const (
	DefaultActivity    = ".MainActivity"
	DefaultGracePeriod = 5 * time.Second
	DefaultDebounce    = 300 * time.Millisecond
	DefaultBundler     = "webpack"
)

// Settings is the typed view over the loaded configuration.
type Settings struct {
	PrimaryPackage   string
	SecondaryPackage string
	Activity         string
	GracePeriod      time.Duration
	Opener           string
	Bundler          string
	Debounce         time.Duration
	LogFormat        string

	// BackendCommands maps a backend name to an executable override.
	BackendCommands map[string]string
}

// Dir returns the path to the config directory (~/.acode/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.acode/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// activeFile is the config file the global Viper instance was loaded from.
var activeFile string

// ActiveFile returns the file Get, Set and Current operate on: the one given
// to LoadFrom, or FilePath.
func ActiveFile() string {
	if activeFile != "" {
		return activeFile
	}
	return FilePath()
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	// Ignore errors; a broken default file must not block every command.
	_ = LoadFrom(FilePath())
}

// LoadFrom initializes Viper to read from path and the environment, and makes
// path the target of Set. A missing file yields the defaults.
func LoadFrom(path string) error {
	activeFile = path
	configure(viper.GetViper(), path)
	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return nil
}

// configure applies file location, env binding and defaults to v.
func configure(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyPrimaryPackage, branding.PrimaryPackage())
	v.SetDefault(KeySecondaryPackage, branding.SecondaryPackage())
	v.SetDefault(KeyActivity, DefaultActivity)
	v.SetDefault(KeyGracePeriod, DefaultGracePeriod)
	v.SetDefault(KeyOpener, "")
	v.SetDefault(KeyBundler, DefaultBundler)
	v.SetDefault(KeyDebounce, DefaultDebounce)
	v.SetDefault(KeyLogFormat, "text")
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair to ActiveFile. Only keys set explicitly
// are written; defaults stay out of the file.
func Set(key, value string) error {
	configFile := ActiveFile()
	if configFile == FilePath() {
		if err := EnsureDir(); err != nil {
			return err
		}
	} else if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(configFile), err)
	}

	fv := viper.New()
	fv.SetConfigFile(configFile)
	fv.SetConfigType(fileType)
	if _, err := os.Stat(configFile); err == nil {
		if err := fv.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	fv.Set(key, value)
	if err := fv.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	viper.Set(key, value)
	return nil
}

// Current returns the Settings held by the global Viper instance.
func Current() Settings {
	return FromViper(viper.GetViper())
}

// FromViper builds Settings from an arbitrary Viper instance.
func FromViper(v *viper.Viper) Settings {
	s := Settings{
		PrimaryPackage:   v.GetString(KeyPrimaryPackage),
		SecondaryPackage: v.GetString(KeySecondaryPackage),
		Activity:         v.GetString(KeyActivity),
		GracePeriod:      v.GetDuration(KeyGracePeriod),
		Opener:           v.GetString(KeyOpener),
		Bundler:          v.GetString(KeyBundler),
		Debounce:         v.GetDuration(KeyDebounce),
		LogFormat:        v.GetString(KeyLogFormat),
		BackendCommands:  make(map[string]string),
	}

	for name := range v.GetStringMap("backends") {
		if cmd := v.GetString("backends." + name + ".command"); cmd != "" {
			s.BackendCommands[name] = cmd
		}
	}

	if s.Activity == "" {
		s.Activity = DefaultActivity
	}
	if s.GracePeriod < 0 {
		s.GracePeriod = DefaultGracePeriod
	}
	if s.Debounce <= 0 {
		s.Debounce = DefaultDebounce
	}
	return s
}
