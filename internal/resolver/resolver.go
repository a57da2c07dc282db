// Package resolver recovers display names for anonymous structs, unions and
// enums. The extractor reports such types with a location spelling like
// "struct (unnamed at src/regs.h:42:9)"; when the surrounding typedef gave
// the type a usable name, the struct-info document carries it. Resolution is
// best effort and never required for partitioning.
package resolver

import (
	"strconv"
	"strings"

	"modmap/internal/metadata"
	"modmap/internal/shared/util"
)

// Site is the definition location of an anonymous aggregate.
type Site struct {
	File string
	Line int
}

// NameResolver resolves an anonymous definition site to a typedef name.
type NameResolver interface {
	Resolve(site Site) (string, bool)
}

type structIndex struct {
	byLine map[Site]string
	spans  map[string][]metadata.StructRecord
}

// NewStructResolver indexes struct-info records by definition location.
func NewStructResolver(records []metadata.StructRecord) NameResolver {
	idx := &structIndex{
		byLine: make(map[Site]string),
		spans:  make(map[string][]metadata.StructRecord),
	}
	for _, rec := range records {
		if rec.Name == "" || IsAnonymousSpelling(rec.Name) || rec.DefinedIn == "" {
			continue
		}
		if rec.StartLine > 0 {
			site := Site{File: rec.DefinedIn, Line: rec.StartLine}
			if _, exists := idx.byLine[site]; !exists {
				idx.byLine[site] = rec.Name
			}
		}
		idx.spans[rec.DefinedIn] = append(idx.spans[rec.DefinedIn], rec)
	}
	return idx
}

func (idx *structIndex) Resolve(site Site) (string, bool) {
	site.File = util.NormalizePath(site.File)
	if name, ok := idx.byLine[site]; ok {
		return name, true
	}

	// Fall back to the record whose span contains the line; the typedef
	// wrapper usually starts a line or two before the aggregate body.
	for _, rec := range idx.spans[site.File] {
		if rec.StartLine > 0 && rec.EndLine >= rec.StartLine &&
			site.Line >= rec.StartLine && site.Line <= rec.EndLine {
			return rec.Name, true
		}
	}
	return "", false
}

// IsAnonymousSpelling reports whether a type name is a clang location
// spelling rather than a real identifier.
func IsAnonymousSpelling(name string) bool {
	return strings.Contains(name, "(unnamed at") || strings.Contains(name, "(anonymous at")
}

// ParseSite extracts the definition site from an anonymous spelling. The
// location is "<file>:<line>" or "<file>:<line>:<col>".
func ParseSite(spelling string) (Site, bool) {
	_, loc, ok := strings.Cut(spelling, " at ")
	if !ok {
		return Site{}, false
	}
	loc = strings.TrimSuffix(strings.TrimSpace(loc), ")")

	parts := strings.Split(loc, ":")
	for len(parts) >= 2 {
		last := parts[len(parts)-1]
		if _, err := strconv.Atoi(last); err != nil {
			break
		}
		// Keep trimming numeric tails; the first numeric after the file
		// path is the line, the rest is a column.
		if len(parts) >= 3 {
			if _, err := strconv.Atoi(parts[len(parts)-2]); err == nil {
				parts = parts[:len(parts)-1]
				continue
			}
		}
		line, _ := strconv.Atoi(last)
		return Site{File: util.NormalizePath(strings.Join(parts[:len(parts)-1], ":")), Line: line}, true
	}
	return Site{}, false
}
