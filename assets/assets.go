// Package assets embeds the static files shipped with the binaries.
package assets

import "embed"

//go:embed templates common-passwords.txt.gz
var FS embed.FS
