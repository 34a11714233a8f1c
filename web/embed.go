// Package web holds the embedded Mudra page.
package web

import "embed"

// Files contains index.html and its assets.
//
//go:embed index.html
var Files embed.FS
