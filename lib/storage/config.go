package storage

import (
	"net/url"
	"strings"

	"boscoin.io/benor/lib/errors"
)

// Config is parsed from a storage uri, "memory://" or "file:///path/to/db".
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.StorageInvalidConfig.Clone().SetData("error", err.Error())
	}

	config := &Config{Scheme: strings.ToLower(u.Scheme)}
	switch config.Scheme {
	case "memory":
	case "file":
		config.Path = u.Path
		if len(config.Path) < 1 {
			return nil, errors.StorageInvalidConfig.Clone().SetData("error", "path is missing")
		}
	default:
		return nil, errors.StorageInvalidConfig.Clone().SetData("scheme", u.Scheme)
	}

	return config, nil
}

func (c *Config) String() string {
	return (&url.URL{Scheme: c.Scheme, Path: c.Path}).String()
}
