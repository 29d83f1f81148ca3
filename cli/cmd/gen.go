package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/hbs/gen"
	"github.com/ardnew/hbs/log"
)

// Gen generates the Go file described by a template manifest.
type Gen struct {
	Force bool `help:"Regenerate even if the output is current."             short:"f" xor:"mode"`
	Check bool `help:"Fail if the output is stale instead of regenerating it."          xor:"mode"`

	Manifest string `arg:"" default:"hbs.yaml" help:"Template manifest." name:"manifest" type:"existingfile"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	m, err := gen.ReadManifest(g.Manifest)
	if err != nil {
		return err
	}

	out := m.OutputPath()
	attrs := []slog.Attr{
		slog.String("manifest", g.Manifest),
		slog.String("output", out),
	}

	if !g.Force {
		sum, err := m.Sum()
		if err != nil {
			return err
		}

		current, err := gen.Current(out, sum)
		if err != nil {
			return ErrWriteOutput.Wrap(err).With(attrs...)
		}

		if current {
			log.DebugContext(ctx, "output is current", attrs...)

			return nil
		}

		if g.Check {
			return ErrStale.With(attrs...)
		}
	}

	f, err := gen.Generate(ctx, m)
	if err != nil {
		return err
	}

	if err := os.WriteFile(f.Path, f.Data, 0o644); err != nil { //nolint:gosec
		return ErrWriteOutput.Wrap(err).With(attrs...)
	}

	_, err = fmt.Fprintln(outputFrom(ctx), f.Path)

	return err
}
