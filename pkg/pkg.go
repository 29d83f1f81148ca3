// Package pkg holds build metadata of the hbs module.
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the module, embedded at build time.
//
//go:embed VERSION
var Version string

const (
	// Name is the command name, also used for the config and cache
	// directories.
	Name = "hbs"
	// Description is the one-line summary shown in help output.
	Description = "Compile Handlebars templates to Go"
)

// EnvPrefix prefixes the environment variables that set command-line flags.
func EnvPrefix() string { return strings.ToUpper(Name) }

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the authors of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
