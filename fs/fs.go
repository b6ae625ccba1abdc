// Package appfs embeds the static assets shipped with the binaries: database migrations, templates and the password deny-list.
package appfs

import "embed"

//go:embed assets migrations all:templates
var FS embed.FS
