// Package resource locates mesh files referenced by server-relative
// paths. The server names assets by its own directory layout; the
// client searches an ordered list of locally configured root
// directories using a three-tier fallback over the trailing path
// segments.
package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/simviz/sceneclient/internal/protocol"
)

// Resolver holds the ordered, mutable list of local roots. Persistence
// of the list is the caller's concern; the resolver only searches it.
type Resolver struct {
	mu    sync.RWMutex
	roots []string

	// stat is swapped in tests.
	stat func(string) (os.FileInfo, error)
}

// NewResolver returns a resolver over the given roots, kept in order.
func NewResolver(roots ...string) *Resolver {
	return &Resolver{
		roots: append([]string(nil), roots...),
		stat:  os.Stat,
	}
}

// AddRoot appends a root directory to the search list.
func (r *Resolver) AddRoot(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = append(r.roots, root)
}

// RemoveLastRoot drops the most recently added root, if any.
func (r *Resolver) RemoveLastRoot() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.roots) > 0 {
		r.roots = r.roots[:len(r.roots)-1]
	}
}

// Roots returns a copy of the current root list.
func (r *Resolver) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.roots...)
}

// Resolve finds fileName under the configured roots given the server's
// directory for it. The server path is decomposed into its last three
// segments (grandparent/parent/leaf) and three candidate joins are
// tried in decreasing specificity:
//
//	root/grandparent/parent/leaf/fileName
//	root/parent/leaf/fileName
//	root/leaf/fileName
//
// Each tier is checked against every root before the next tier is
// tried, so a tier-1 match under a later root beats a tier-3 match
// under an earlier one. Returns protocol.ErrResourceNotFound when no
// combination exists on disk.
func (r *Resolver) Resolve(serverDir, fileName string) (string, error) {
	roots := r.Roots()
	if len(roots) == 0 {
		return "", fmt.Errorf("%w: %s (no resource roots configured)", protocol.ErrResourceNotFound, fileName)
	}

	leaf, parent, grandparent := decompose(serverDir)
	tiers := [][]string{
		{grandparent, parent, leaf},
		{parent, leaf},
		{leaf},
	}

	for _, tier := range tiers {
		if tier[0] == "" {
			// Server path too shallow for this tier.
			continue
		}
		for _, root := range roots {
			parts := append([]string{root}, tier...)
			parts = append(parts, fileName)
			candidate := filepath.Join(parts...)
			if info, err := r.stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	if leaf == "" {
		// Appearance overrides may reference a mesh by bare file name
		// with no server directory; search the roots directly.
		for _, root := range roots {
			candidate := filepath.Join(root, fileName)
			if info, err := r.stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s under %s", protocol.ErrResourceNotFound, fileName, serverDir)
}

// decompose splits a server-side directory path into its last three
// segments. Server paths use forward slashes regardless of the local
// OS; both separators are accepted.
func decompose(serverDir string) (leaf, parent, grandparent string) {
	norm := strings.ReplaceAll(serverDir, "\\", "/")
	raw := strings.FieldsFunc(norm, func(r rune) bool { return r == '/' })
	segs := raw[:0]
	for _, seg := range raw {
		if seg != "." {
			segs = append(segs, seg)
		}
	}
	if n := len(segs); n > 0 {
		leaf = segs[n-1]
		if n > 1 {
			parent = segs[n-2]
		}
		if n > 2 {
			grandparent = segs[n-3]
		}
	}
	return leaf, parent, grandparent
}
