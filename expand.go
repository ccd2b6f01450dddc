// Package gnocchi provides shared input plumbing for the association
// pipeline: location expansion, delimiter detection, transparent
// decompression, and Google Storage access.
package gnocchi

import (
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// ExpandHome resolves a leading ~/ against the current user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", pfx.Err(err)
	}

	return filepath.Join(usr.HomeDir, path[2:]), nil
}
