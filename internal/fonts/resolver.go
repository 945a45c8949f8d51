// Package fonts resolves font-stack glyph requests against a table of
// pre-built, gzip-compressed glyph ranges embedded into the binary.
package fonts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed glyphs
var embeddedGlyphs embed.FS

// FallbackFamily is appended after every requested stack, so a stack that
// misses entirely still gets one last chance to resolve.
const FallbackFamily = "Roboto Regular"

// Resolver holds the glyph table. It is built once at startup and
// read-only afterwards, so it is shared across concurrent requests without
// synchronization.
type Resolver struct {
	glyphs   map[string][]byte
	families []string
	fallback string
}

// NewEmbedded builds the resolver from the glyph ranges compiled into the
// binary.
func NewEmbedded() (*Resolver, error) {
	sub, err := fs.Sub(embeddedGlyphs, "glyphs")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded glyphs: %w", err)
	}
	return New(sub, FallbackFamily)
}

// New builds the resolver from a filesystem laid out as
// {family}/{range}.pbf. Payloads are stored gzip-compressed.
func New(fsys fs.FS, fallback string) (*Resolver, error) {
	r := &Resolver{
		glyphs:   make(map[string][]byte),
		fallback: fallback,
	}

	seen := make(map[string]bool)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".pbf" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read glyph file %s: %w", p, err)
		}
		r.glyphs[p] = data

		family := path.Dir(p)
		if family != "." && !seen[family] {
			seen[family] = true
			r.families = append(r.families, family)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(r.families)
	return r, nil
}

// Resolve probes each family of the stack in caller order, then the
// fallback family, and returns the first glyph payload found. Range labels
// are matched verbatim; %20 in family names decodes to a space. A miss
// across the whole chain is an absent result, not an error.
func (r *Resolver) Resolve(stack []string, rangeLabel string) ([]byte, bool) {
	for _, family := range append(append([]string{}, stack...), r.fallback) {
		family = strings.ReplaceAll(family, "%20", " ")
		key := family + "/" + rangeLabel + ".pbf"
		if data, ok := r.glyphs[key]; ok {
			return data, true
		}
	}
	return nil, false
}

// Families lists the known font family names, sorted.
func (r *Resolver) Families() []string {
	out := make([]string, len(r.families))
	copy(out, r.families)
	return out
}
