// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/seedhost/seedhost/lib/compile"
	"github.com/seedhost/seedhost/lib/service"
)

// File is one rendered output file.
type File struct {
	// Path is relative to the install root, slash-separated.
	Path string
	Data []byte
	Mode os.FileMode
}

// Under returns the file's location below root.
func (f File) Under(root string) string {
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, filepath.FromSlash(f.Path))
}

// UnitPath returns the relative path of a unit file.
func UnitPath(unit string) string {
	return path.Join(UnitDirectory, unit+".service")
}

// Files renders the result into the host file set, sorted by path.
// Optional pieces (gateway unit, proxy, firewall, inline public key) are
// present only when configured.
func (r *Result) Files() []File {
	files := []File{
		{Path: ArtifactFile, Data: r.Artifact, Mode: compile.ArtifactMode},
		{Path: UnitPath(service.NodeUnit), Data: r.Node.Unit(), Mode: 0o644},
	}
	if r.HTTPD != nil {
		files = append(files, File{Path: UnitPath(service.HTTPDUnit), Data: r.HTTPD.Unit(), Mode: 0o644})
	}
	if r.Exposure.VirtualHost != nil {
		files = append(files, File{Path: NginxFile, Data: r.Exposure.Nginx(), Mode: 0o644})
	}
	if r.Exposure.Firewall != nil {
		files = append(files, File{Path: NftablesFile, Data: r.Exposure.Nftables(), Mode: 0o644})
	}
	if r.PublicKey != nil {
		files = append(files, File{Path: PublicKeyFile, Data: r.PublicKey, Mode: 0o444})
	}
	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Path, b.Path) })
	return files
}
