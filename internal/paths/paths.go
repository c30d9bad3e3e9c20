// Package paths implements the component-wise path containment rule shared
// by the risk classifier, the scope validator and the sandboxed effector.
//
// Containment is decided on whole path segments, never on string prefixes:
// "workspace2/file" is not within "workspace".
package paths

import (
	"path/filepath"
	"strings"
)

const rootSegment = "/"

// Clean normalises a path lexically and converts it to forward slashes.
func Clean(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// Segments splits a cleaned path into its components. Absolute paths begin
// with a "/" segment so they never line up with relative ones. "." has no
// segments.
func Segments(p string) []string {
	c := Clean(p)
	if c == "." {
		return nil
	}

	var segs []string
	if strings.HasPrefix(c, "/") {
		segs = append(segs, rootSegment)
		c = strings.TrimLeft(c, "/")
		if c == "" {
			return segs
		}
	} else if vol := filepath.VolumeName(filepath.FromSlash(c)); vol != "" {
		segs = append(segs, vol)
		c = strings.TrimLeft(strings.TrimPrefix(c, vol), "/")
		if c == "" {
			return segs
		}
	}
	return append(segs, strings.Split(c, "/")...)
}

// Within reports whether p lies inside root, or is root itself. Every segment
// of root must equal the corresponding leading segment of p. A path that
// still climbs above its start after cleaning is only within a root that
// climbs the same way. An absolute path is never within a relative root,
// including ".".
func Within(root, p string) bool {
	if rooted(root) != rooted(p) {
		return false
	}
	rs := Segments(root)
	ps := Segments(p)

	if len(ps) < len(rs) {
		return false
	}
	for i, seg := range rs {
		if ps[i] != seg {
			return false
		}
	}
	for _, seg := range ps[len(rs):] {
		if seg == ".." {
			return false
		}
	}
	return true
}

func rooted(p string) bool {
	c := Clean(p)
	return strings.HasPrefix(c, "/") || filepath.VolumeName(filepath.FromSlash(c)) != ""
}

// WithinAny reports whether p lies inside at least one of roots. Empty roots
// match nothing.
func WithinAny(roots []string, p string) bool {
	for _, root := range roots {
		if root != "" && Within(root, p) {
			return true
		}
	}
	return false
}

// Same reports whether a and b name the same location lexically.
func Same(a, b string) bool {
	return Clean(a) == Clean(b)
}

// HasSegment reports whether any component of p equals name.
func HasSegment(p, name string) bool {
	for _, seg := range Segments(p) {
		if seg == name {
			return true
		}
	}
	return false
}
