// Package config loads the lowdown build configuration.
//
// Values are read from an optional YAML file and then overridden by
// LOWDOWN_* environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nobl9/govy/pkg/govy"
	"github.com/nobl9/govy/pkg/rules"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDest           = "docs/api"
	DefaultExampleTimeout = 30 * time.Second
)

// Config is the complete build configuration.
type Config struct {
	// Sources are the package patterns to document, e.g. "./...".
	Sources []string `yaml:"sources"`
	// Dest is the output directory.
	Dest string `yaml:"dest"`
	// Whitelist holds the namespace prefixes to document.
	Whitelist []string `yaml:"whitelist"`
	Gists     Gists    `yaml:"gists"`
	// ExampleTimeout bounds the execution of a single example.
	ExampleTimeout time.Duration `yaml:"exampleTimeout"`
	// Template is a directory copied next to the generated namespaces.json
	// before BuildCommand runs in it.
	Template     string `yaml:"template"`
	BuildCommand string `yaml:"buildCommand"`
}

// Gists configures the gist synchronization of examples.
type Gists struct {
	Enabled  bool   `yaml:"enabled"`
	Cached   bool   `yaml:"cached"`
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Sources:        []string{"./..."},
		Dest:           DefaultDest,
		Gists:          Gists{Cached: true},
		ExampleTimeout: DefaultExampleTimeout,
	}
}

// Load reads the configuration with [Read] and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

// Read reads the YAML file at path, if path is not empty, and applies the
// environment overrides. The result is not validated, callers applying further
// overrides must call [Config.Validate] themselves.
func Read(path string) (*Config, error) {
	return read(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg, err := read(path, lookupEnv)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", path)
		}
	}
	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Environment variables overriding the file configuration.
const (
	EnvSources        = "LOWDOWN_SOURCES"
	EnvDest           = "LOWDOWN_DEST"
	EnvWhitelist      = "LOWDOWN_WHITELIST"
	EnvGistsEnabled   = "LOWDOWN_GISTS_ENABLED"
	EnvGistsCached    = "LOWDOWN_GISTS_CACHED"
	EnvGistsToken     = "LOWDOWN_GISTS_TOKEN"
	EnvGistsUsername  = "LOWDOWN_GISTS_USERNAME"
	EnvExampleTimeout = "LOWDOWN_EXAMPLE_TIMEOUT"
	EnvTemplate       = "LOWDOWN_TEMPLATE"
	EnvBuildCommand   = "LOWDOWN_BUILD_COMMAND"
)

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvSources); ok {
		cfg.Sources = SplitList(v)
	}
	if v, ok := lookupEnv(EnvDest); ok {
		cfg.Dest = v
	}
	if v, ok := lookupEnv(EnvWhitelist); ok {
		cfg.Whitelist = SplitList(v)
	}
	for _, flag := range []struct {
		env    string
		target *bool
	}{
		{env: EnvGistsEnabled, target: &cfg.Gists.Enabled},
		{env: EnvGistsCached, target: &cfg.Gists.Cached},
	} {
		v, ok := lookupEnv(flag.env)
		if !ok {
			continue
		}
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", flag.env)
		}
		*flag.target = enabled
	}
	if v, ok := lookupEnv(EnvGistsToken); ok {
		cfg.Gists.Token = v
	}
	if v, ok := lookupEnv(EnvGistsUsername); ok {
		cfg.Gists.Username = v
	}
	if v, ok := lookupEnv(EnvExampleTimeout); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvExampleTimeout)
		}
		cfg.ExampleTimeout = timeout
	}
	if v, ok := lookupEnv(EnvTemplate); ok {
		cfg.Template = v
	}
	if v, ok := lookupEnv(EnvBuildCommand); ok {
		cfg.BuildCommand = v
	}
	return nil
}

// SplitList splits a comma-separated list, dropping empty elements.
func SplitList(s string) []string {
	var list []string
	for elem := range strings.SplitSeq(s, ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			list = append(list, elem)
		}
	}
	return list
}

var validator = govy.New(
	govy.ForSlice(func(c Config) []string { return c.Sources }).
		WithName("sources").
		Rules(rules.SliceMinLength[[]string](1)).
		RulesForEach(rules.StringNotEmpty()),
	govy.For(func(c Config) string { return c.Dest }).
		WithName("dest").
		Required().
		Rules(rules.StringNotEmpty()),
	govy.For(func(c Config) time.Duration { return c.ExampleTimeout }).
		WithName("exampleTimeout").
		Rules(rules.GT(time.Duration(0))),
	govy.For(func(c Config) string { return c.Gists.Token }).
		WithName("gists.token").
		Required().
		When(func(c Config) bool { return c.Gists.Enabled }, govy.WhenDescription("gists are enabled")),
	govy.For(func(c Config) string { return c.BuildCommand }).
		WithName("buildCommand").
		Required().
		When(func(c Config) bool { return c.Template != "" }, govy.WhenDescription("template is set")),
).
	WithName("Config")

// Validate checks the configuration.
func (c Config) Validate() error {
	return validator.Validate(c)
}
