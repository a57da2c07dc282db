package graph

import (
	"fmt"
	"path"
	"strings"

	"modmap/internal/shared/util"
)

// A prefix shorter than this is noise, not a module name.
const minPrefixLen = 3

// namer assigns display names to candidates, tracking collisions per parent
// directory so repeated names get an incrementing suffix.
type namer struct {
	taken map[string]map[string]bool
}

func newNamer() *namer {
	return &namer{taken: make(map[string]map[string]bool)}
}

func (n *namer) name(dir string, files []string) string {
	base := baseName(dir, files)

	if n.taken[dir] == nil {
		n.taken[dir] = make(map[string]bool)
	}
	name := base
	for suffix := 2; n.taken[dir][name]; suffix++ {
		name = fmt.Sprintf("%s_%d", base, suffix)
	}
	n.taken[dir][name] = true
	return name
}

func baseName(dir string, files []string) string {
	if len(files) == 1 {
		return util.BaseNameNoExt(files[0])
	}

	if prefix := commonTokenPrefix(files); len(prefix) >= minPrefixLen {
		return prefix
	}

	if dir == "" {
		return "root"
	}
	return path.Base(dir)
}

// commonTokenPrefix finds the longest run of leading underscore-delimited
// tokens shared by all file base names. Token-level matching keeps names
// like "uart" out of a "ua.c"/"uart.c" pair where a raw character prefix
// would invent one.
func commonTokenPrefix(files []string) string {
	if len(files) == 0 {
		return ""
	}

	tokenized := make([][]string, len(files))
	for i, f := range files {
		tokenized[i] = strings.Split(util.BaseNameNoExt(f), "_")
	}

	shared := tokenized[0]
	for _, tokens := range tokenized[1:] {
		max := len(shared)
		if len(tokens) < max {
			max = len(tokens)
		}
		matched := 0
		for matched < max && tokens[matched] == shared[matched] {
			matched++
		}
		shared = shared[:matched]
		if len(shared) == 0 {
			return ""
		}
	}

	return strings.Join(shared, "_")
}
