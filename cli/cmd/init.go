package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/hbs/log"
	"github.com/ardnew/hbs/profile"
)

// Init writes a configuration file holding the current global flag values.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	path, ok := vars(ctx)[ConfigIdentifier]
	if !ok {
		return ErrWriteConfig.With(slog.String("reason", "config path undefined"))
	}

	attr := slog.String("file", path)

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.With(attr).Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(flagValues(kongContextFrom(ctx)), yaml.Indent(2))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).With(attr)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return ErrWriteConfig.Wrap(err).With(attr)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ErrWriteConfig.Wrap(err).With(attr)
	}

	log.DebugContext(ctx, "initialized configuration file", attr)

	_, err = fmt.Fprintln(outputFrom(ctx), path)

	return err
}

// flagValues returns the top-level flags of ktx with their values, in
// declaration order. Help and profiling flags are omitted.
func flagValues(ktx *kong.Context) yaml.MapSlice {
	if ktx == nil || ktx.Model == nil {
		return nil
	}

	var ms yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || flag.Name == "help" || strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		switch v := ktx.FlagValue(flag).(type) {
		case nil:
		case string:
			if v != "" {
				ms = append(ms, yaml.MapItem{Key: flag.Name, Value: v})
			}
		case fmt.Stringer:
			ms = append(ms, yaml.MapItem{Key: flag.Name, Value: v.String()})
		default:
			ms = append(ms, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return ms
}
