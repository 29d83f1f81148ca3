package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	outputKey  struct{}
)

// WithContext returns a copy of ctx carrying the parsed command line.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a copy of ctx directing command output to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer set by [WithOutput], or [os.Stdout].
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// vars returns the interpolation variables of the parsed command line.
func vars(ctx context.Context) kong.Vars {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Model != nil {
		return ktx.Model.Vars()
	}

	return nil
}
