package mustache

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
)

// PartialProvider comprises the behaviors required of a struct to be able to
// provide partials to the mustache rendering engine.
type PartialProvider interface {
	// Get accepts the name of a partial and returns the partial's template
	// source, if it could be found; an empty string, if it could not be
	// found; or an empty string and an error if an error occurred (other
	// than an inability to find the partial).
	Get(name string) (string, error)
	// IsEmpty reports whether this provider can ever resolve any partial.
	// renderPartial uses it to skip partial rendering entirely rather than
	// attempt and fall back to "".
	IsEmpty() bool
}

// FileProvider implements the PartialProvider interface by providing
// partials drawn from a filesystem. When a partial named `NAME` is
// requested, FileProvider searches each listed path for a file named as
// `NAME` followed by any of the listed extensions. The default for `Paths`
// is to search the current working directory. The default for `Extensions`
// is to examine, in order, no extension; then ".mustache"; then ".stache".
// If Unsafe is set, partial names are allowed to begin with '.' or '..'
// after cleaning, meaning they can potentially refer to files outside any
// of the listed directory paths.
type FileProvider struct {
	Paths      []string
	Extensions []string
	Unsafe     bool
}

// Get accepts the name of a partial and returns the partial's template
// source.
func (fp *FileProvider) Get(name string) (string, error) {
	var cleanname string
	if fp.Unsafe {
		cleanname = name
	} else {
		// Normalize backslashes before Clean so a Windows-style traversal
		// attempt (e.g. "spec\\..\\..\\test.txt") is caught too, not just
		// the forward-slash form path.Clean understands natively.
		cleanname = path.Clean(strings.ReplaceAll(name, "\\", "/"))
		if strings.HasPrefix(cleanname, ".") {
			return "", fmt.Errorf("unsafe partial name passed to FileProvider: %s", name)
		}
	}

	paths := fp.Paths
	if paths == nil {
		paths = []string{""}
	}

	exts := fp.Extensions
	if exts == nil {
		exts = []string{"", ".mustache", ".stache"}
	}

	var f *os.File
	var err error
	for _, p := range paths {
		for _, e := range exts {
			pname := path.Join(p, cleanname+e)
			f, err = os.Open(pname)
			if err == nil {
				break
			}
		}
		if f != nil {
			break
		}
	}

	if f == nil {
		return "", nil
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// IsEmpty reports whether this provider could ever serve a partial. A
// non-nil FileProvider can always attempt to resolve a name against the
// filesystem, so only a nil provider counts as empty.
func (fp *FileProvider) IsEmpty() bool {
	return fp == nil
}

var _ PartialProvider = (*FileProvider)(nil)

// StaticProvider implements the PartialProvider interface by providing
// partials drawn from a map, which maps partial name to template contents.
type StaticProvider struct {
	Partials map[string]string
}

// Get accepts the name of a partial and returns the partial's template
// source.
func (sp *StaticProvider) Get(name string) (string, error) {
	if sp.Partials != nil {
		if data, ok := sp.Partials[name]; ok {
			return data, nil
		}
	}
	return "", nil
}

// IsEmpty reports whether this provider holds any partials at all.
func (sp *StaticProvider) IsEmpty() bool {
	return sp == nil || len(sp.Partials) == 0
}

var _ PartialProvider = (*StaticProvider)(nil)

// SliceProvider implements PartialProvider over an ordered list of
// name/template pairs, preserving first-match-wins lookup semantics when the
// same name appears more than once — useful when partial sets are merged
// from multiple sources and precedence matters.
type SliceProvider struct {
	Names     []string
	Templates []string
}

// Get accepts the name of a partial and returns the partial's template
// source.
func (sp *SliceProvider) Get(name string) (string, error) {
	for i, n := range sp.Names {
		if n == name && i < len(sp.Templates) {
			return sp.Templates[i], nil
		}
	}
	return "", nil
}

// IsEmpty reports whether this provider holds any name/template pairs.
func (sp *SliceProvider) IsEmpty() bool {
	return sp == nil || len(sp.Names) == 0
}

var _ PartialProvider = (*SliceProvider)(nil)
