package project

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// srcAttr matches quoted src attribute values. This is a pattern match, not
// an HTML parse; malformed markup may under- or over-match.
var srcAttr = regexp.MustCompile(`src=["']([^"']+)["']`)

// ScriptReference is a script named by the entry file.
type ScriptReference struct {
	// Raw is the attribute value as written in the markup.
	Raw string `json:"raw"`
	// Path is the URL for remote references, or the cleaned absolute path
	// for local ones.
	Path     string `json:"path"`
	Remote   bool   `json:"remote"`
	Resolved bool   `json:"resolved"`
}

// Extractor pulls script references out of entry file markup.
type Extractor struct {
	fs            afero.Fs
	remoteSchemes []string
}

func NewExtractor(fsys afero.Fs, remoteSchemes []string) *Extractor {
	return &Extractor{fs: fsys, remoteSchemes: remoteSchemes}
}

// SrcValues returns every src attribute value in document order.
func SrcValues(html string) []string {
	matches := srcAttr.FindAllStringSubmatch(html, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, m[1])
	}
	return values
}

// Extract resolves the references in html against entryPath's directory.
// Local references are checked for existence at call time.
func (e *Extractor) Extract(entryPath, html string) []ScriptReference {
	baseDir := filepath.Dir(entryPath)

	var refs []ScriptReference
	for _, src := range SrcValues(html) {
		if e.isRemote(src) {
			refs = append(refs, ScriptReference{Raw: src, Path: src, Remote: true, Resolved: true})
			continue
		}
		p := filepath.Clean(filepath.Join(baseDir, filepath.FromSlash(src)))
		refs = append(refs, ScriptReference{Raw: src, Path: p, Resolved: isFile(e.fs, p)})
	}
	return refs
}

func (e *Extractor) isRemote(src string) bool {
	for _, scheme := range e.remoteSchemes {
		if strings.HasPrefix(src, scheme) {
			return true
		}
	}
	return false
}

// AnyContains reports whether any reference's raw value contains marker.
func AnyContains(refs []ScriptReference, marker string) bool {
	for _, ref := range refs {
		if strings.Contains(ref.Raw, marker) {
			return true
		}
	}
	return false
}

// Missing lists the local references that did not resolve, in markup order.
func Missing(refs []ScriptReference) []string {
	var missing []string
	for _, ref := range refs {
		if !ref.Resolved {
			missing = append(missing, ref.Path)
		}
	}
	return missing
}

// MainScript returns the first resolved local reference whose path ends with
// marker. The file is checked again so a script removed since extraction is
// not returned.
func (e *Extractor) MainScript(refs []ScriptReference, marker string) (string, bool) {
	for _, ref := range refs {
		if ref.Remote || !ref.Resolved {
			continue
		}
		if strings.HasSuffix(ref.Path, marker) && isFile(e.fs, ref.Path) {
			return ref.Path, true
		}
	}
	return "", false
}
