// Package assets resolves the per-locale signal images shipped next to the
// binary (<dir>/<locale>/<steps>.png).
package assets

import (
	"os"
	"path/filepath"
	"strconv"
)

// Dir implements ports.ImageCatalog over a local directory tree. A missing
// image is not an error; the caller sends a text-only reply instead.
type Dir struct {
	base string
}

func NewDir(base string) *Dir {
	return &Dir{base: base}
}

func (d *Dir) Lookup(locale string, steps int) (string, bool) {
	path := filepath.Join(d.base, locale, strconv.Itoa(steps)+".png")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
