package shell

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the on-disk shell configuration.
//
//	packed = true
//
//	[args]
//	"world:b" = ["world:b", "--verbose"]
//
//	[alias]
//	"world:default" = "world:b"
type Config struct {
	Packed bool                `toml:"packed"`
	Args   map[string][]string `toml:"args"`
	Alias  map[string]string   `toml:"alias"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}

	return c, nil
}

// ParseConfig parses a TOML configuration document.
func ParseConfig(doc string) (Config, error) {
	var c Config
	if _, err := toml.Decode(doc, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	return c, nil
}

func (c Config) Options() []Option {
	opts := make([]Option, 0, len(c.Args)+len(c.Alias))
	for locator, args := range c.Args {
		opts = append(opts, WithArgs(locator, args...))
	}

	for from, to := range c.Alias {
		opts = append(opts, WithAlias(from, to))
	}

	return opts
}
