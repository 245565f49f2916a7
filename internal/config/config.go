// Package config loads the optional importer profile, a small YAML file that
// supplies defaults for flags the user does not want to repeat on every run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// cacheFileName is the default location of the imported-file cache,
// relative to the user's home directory.
const cacheFileName = ".qifimport-cache.json"

// Profile holds per-user defaults. Every field is optional; command-line
// flags take precedence over anything set here.
type Profile struct {
	// Currency is the default currency code for new accounts.
	Currency string `yaml:"currency"`
	// Account is the default source account for records that do not
	// carry one.
	Account string `yaml:"account"`
	// Book is the path to the ledger database.
	Book string `yaml:"book"`
	// Rules is the path to the category rules file.
	Rules string `yaml:"rules"`
	// Cache is the path to the imported-file cache.
	Cache string `yaml:"cache"`
}

// Load reads a profile from path. A missing file is not an error: it
// returns an empty profile so callers can treat the profile as pure
// defaults.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &p, nil
}

// Merge fills in any empty fields of p from other, leaving set fields
// alone. Flag values should be merged over the loaded profile.
func (p *Profile) Merge(other *Profile) {
	if p.Currency == "" {
		p.Currency = other.Currency
	}
	if p.Account == "" {
		p.Account = other.Account
	}
	if p.Book == "" {
		p.Book = other.Book
	}
	if p.Rules == "" {
		p.Rules = other.Rules
	}
	if p.Cache == "" {
		p.Cache = other.Cache
	}
}

// DefaultCachePath returns the imported-file cache location used when
// neither the profile nor the -cache flag set one.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return cacheFileName
	}
	return filepath.Join(home, cacheFileName)
}

// DefaultProfilePath returns where Load looks for the profile when the
// -config flag is not given.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qifimport.yaml"
	}
	return filepath.Join(home, ".qifimport.yaml")
}
