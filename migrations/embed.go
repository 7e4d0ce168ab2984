// Package migrations carries the goose SQL migrations so binaries do not depend
// on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
