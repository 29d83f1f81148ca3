package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] reading flag values from a YAML
// config file.
//
// Keys name flags with either hyphens or underscores. Nested mappings join
// their keys with a hyphen, so both of these set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Command-line flags and environment variables override config values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened config file keys.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for key, val := range m {
		key = strings.ReplaceAll(strings.ToLower(key), "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := val.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(val)
	}
}

// scalar converts numbers to strings, which kong parses per flag type.
func scalar(v any) any {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case []any:
		s := make([]any, len(n))
		for i, e := range n {
			s[i] = scalar(e)
		}

		return s
	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
