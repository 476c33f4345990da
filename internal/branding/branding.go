// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded with //go:embed so a fork only has to edit the
// YAML file to rename the binary, its env prefix or the host app packages.
package branding

import (
	_ "embed"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	HomeDir          string `yaml:"home_dir"`
	EnvPrefix        string `yaml:"env_prefix"`
	GitHubRepo       string `yaml:"github_repo"`
	URIScheme        string `yaml:"uri_scheme"`
	PrimaryPackage   string `yaml:"primary_package"`
	SecondaryPackage string `yaml:"secondary_package"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:          "acode",
			DisplayName:      "Acode CLI",
			Description:      "Companion command-line tool for the Acode mobile code editor",
			HomeDir:          ".acode",
			EnvPrefix:        "ACODE",
			GitHubRepo:       "7HR4IZ3/acode-cli",
			URIScheme:        "acode",
			PrimaryPackage:   "com.foxdebug.acode",
			SecondaryPackage: "com.foxdebug.acodefree",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "acode").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name, also used as the log prefix.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".acode").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "ACODE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// URIScheme returns the scheme the host app registers for CLI hand-offs.
func URIScheme() string { load(); return defaults.URIScheme }

// PrimaryPackage returns the Android package id of the paid edition.
func PrimaryPackage() string { load(); return defaults.PrimaryPackage }

// SecondaryPackage returns the Android package id of the free edition.
func SecondaryPackage() string { load(); return defaults.SecondaryPackage }
