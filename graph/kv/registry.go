package kv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hidal-go/hidalgo/kv"
)

// Backends lists the names of registered hidalgo backends. Import
// graph/kv/all to register every backend hidalgo supports.
func Backends() []string {
	var names []string
	for _, r := range kv.List() {
		names = append(names, strings.TrimPrefix(r.Name, "flat."))
	}
	sort.Strings(names)
	return names
}

// Open opens a hidalgo backend by name. Names are accepted with or
// without the "flat." prefix of flat backends.
func Open(backend, path string) (kv.KV, error) {
	for _, r := range kv.List() {
		if r.Name != backend && r.Name != "flat."+backend {
			continue
		}
		if !r.Volatile && path == "" {
			return nil, fmt.Errorf("kv: backend %q needs a path", backend)
		}
		return r.OpenPath(path)
	}
	return nil, fmt.Errorf("kv: unknown backend %q", backend)
}

// IsPersistent reports whether a backend keeps data on disk.
func IsPersistent(backend string) bool {
	for _, r := range kv.List() {
		if r.Name == backend || r.Name == "flat."+backend {
			return !r.Volatile
		}
	}
	return false
}
