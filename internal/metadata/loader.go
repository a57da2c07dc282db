package metadata

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"modmap/internal/core/errors"
	"modmap/internal/shared/util"
)

// LoadCallGraph reads the extractor's call-graph document: an object mapping
// "<file>:<function>" keys to arrays of callee keys. Malformed entries are
// skipped with a warning; a missing or unparseable document is fatal.
func LoadCallGraph(path string) ([]CallEdge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotFound, "call graph document not found"),
				errors.CtxPath, path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read call graph document")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeMalformedInput, "call graph document is not a JSON object"),
			errors.CtxPath, path)
	}

	seen := make(map[CallEdge]bool)
	edges := make([]CallEdge, 0, len(raw))

	for _, key := range util.SortedStringKeys(raw) {
		caller, ok := ParseFunctionID(key)
		if !ok {
			slog.Warn("skipping malformed call graph key", "key", key)
			continue
		}

		var callees []string
		if err := json.Unmarshal(raw[key], &callees); err != nil {
			// Treat the function as edge-free rather than failing the run.
			slog.Warn("skipping malformed callee list", "caller", key, "error", err)
			continue
		}

		for _, calleeKey := range callees {
			callee, ok := ParseFunctionID(calleeKey)
			if !ok {
				slog.Warn("skipping malformed callee key", "caller", key, "callee", calleeKey)
				continue
			}
			edge := CallEdge{Caller: caller, Callee: callee}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			edges = append(edges, edge)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Caller != edges[j].Caller {
			return edges[i].Caller.String() < edges[j].Caller.String()
		}
		return edges[i].Callee.String() < edges[j].Callee.String()
	})

	return edges, nil
}

// LoadFileInfo reads the extractor's file-info document: an array of per-file
// records. Duplicate paths keep the first record seen.
func LoadFileInfo(path string) ([]FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotFound, "file info document not found"),
				errors.CtxPath, path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read file info document")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeMalformedInput, "file info document is not a JSON array"),
			errors.CtxPath, path)
	}

	seen := make(map[string]bool, len(raw))
	records := make([]FileRecord, 0, len(raw))

	for i, entry := range raw {
		var rec FileRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			slog.Warn("skipping malformed file info entry", "index", i, "error", err)
			continue
		}
		rec.Path = util.NormalizePath(rec.Path)
		if rec.Path == "" {
			slog.Warn("skipping file info entry without a path", "index", i)
			continue
		}
		if seen[rec.Path] {
			slog.Warn("skipping duplicate file info entry", "path", rec.Path)
			continue
		}
		seen[rec.Path] = true
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	return records, nil
}

type structEntry struct {
	Struct    string        `json:"struct"`
	Union     string        `json:"union"`
	Enum      string        `json:"enum"`
	Fields    []StructField `json:"fields"`
	DefinedIn string        `json:"defined_in"`
	StartLine int           `json:"start_line"`
	EndLine   int           `json:"end_line"`
}

// LoadStructInfo reads the optional struct-info document. A missing document
// yields an empty set, not an error.
func LoadStructInfo(path string) ([]StructRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read struct info document")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeMalformedInput, "struct info document is not a JSON array"),
			errors.CtxPath, path)
	}

	records := make([]StructRecord, 0, len(raw))
	for i, entry := range raw {
		var se structEntry
		if err := json.Unmarshal(entry, &se); err != nil {
			slog.Warn("skipping malformed struct info entry", "index", i, "error", err)
			continue
		}

		rec := StructRecord{
			Fields:    se.Fields,
			DefinedIn: util.NormalizePath(se.DefinedIn),
			StartLine: se.StartLine,
			EndLine:   se.EndLine,
		}
		switch {
		case se.Struct != "":
			rec.Name, rec.Kind = se.Struct, "struct"
		case se.Union != "":
			rec.Name, rec.Kind = se.Union, "union"
		case se.Enum != "":
			rec.Name, rec.Kind = se.Enum, "enum"
		default:
			slog.Warn("skipping struct info entry without a name", "index", i)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].DefinedIn != records[j].DefinedIn {
			return records[i].DefinedIn < records[j].DefinedIn
		}
		return records[i].Name < records[j].Name
	})

	return records, nil
}

// ResolveSizes stats each record's source file relative to the project
// directory. Files that cannot be stat'ed keep size zero.
func ResolveSizes(records []FileRecord, projectDir string) {
	for i := range records {
		full := filepath.Join(projectDir, filepath.FromSlash(records[i].Path))
		info, err := os.Stat(full)
		if err != nil {
			slog.Debug("source file not found, using zero size", "path", records[i].Path)
			continue
		}
		records[i].Size = info.Size()
	}
}

// FilterRecords drops records excluded by the configured glob patterns.
// File patterns match the base name, directory patterns match any path
// segment of the parent directory.
func FilterRecords(records []FileRecord, dirPatterns, filePatterns []string) ([]FileRecord, error) {
	dirGlobs, err := compileGlobs(dirPatterns)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(filePatterns)
	if err != nil {
		return nil, err
	}
	if len(dirGlobs) == 0 && len(fileGlobs) == 0 {
		return records, nil
	}

	kept := make([]FileRecord, 0, len(records))
	for _, rec := range records {
		if matchesAny(fileGlobs, filepath.Base(rec.Path)) {
			slog.Debug("excluding file by pattern", "path", rec.Path)
			continue
		}
		excluded := false
		for _, segment := range strings.Split(util.DirOf(rec.Path), "/") {
			if segment != "" && matchesAny(dirGlobs, segment) {
				excluded = true
				break
			}
		}
		if excluded {
			slog.Debug("excluding file by directory pattern", "path", rec.Path)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+pattern)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
