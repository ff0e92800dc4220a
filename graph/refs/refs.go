// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package refs interns RDF resource identifiers to dense integer handles.
package refs

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownHandle is returned when resolving a handle that was never interned.
var ErrUnknownHandle = errors.New("unknown resource handle")

// Handle is an opaque token for an interned resource identifier.
// The zero Handle is never assigned.
type Handle uint32

// Valid reports whether h could have been assigned by a Table.
func (h Handle) Valid() bool { return h != 0 }

func (h Handle) String() string { return fmt.Sprintf("#%d", uint32(h)) }

// HandleError records a failed handle resolution.
type HandleError struct {
	Handle Handle
	Err    error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("resolve %v: %v", e.Handle, e.Err)
}

func (e *HandleError) Unwrap() error { return e.Err }

// Namer converts between identifiers and handles.
type Namer interface {
	// Lookup returns the handle of an identifier without interning it.
	Lookup(id string) (Handle, bool)
	// Resolve returns the identifier a handle was interned from.
	Resolve(h Handle) (string, error)
}

// BlankPrefix marks blank node labels among identifiers.
const BlankPrefix = "_:"

// IsBlank reports whether an identifier is a blank node label.
func IsBlank(id string) bool {
	return strings.HasPrefix(id, BlankPrefix)
}

var _ Namer = (*Table)(nil)

// Table is the resource identity table. It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	ids   map[string]Handle
	names []string // names[h-1]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{ids: make(map[string]Handle)}
}

// Intern returns the handle for id, assigning a new one on first use.
func (t *Table) Intern(id string) Handle {
	t.mu.RLock()
	h, ok := t.ids[id]
	t.mu.RUnlock()
	if ok {
		return h
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok = t.ids[id]; ok {
		return h
	}
	if t.ids == nil {
		t.ids = make(map[string]Handle)
	}
	t.names = append(t.names, id)
	h = Handle(len(t.names))
	t.ids[id] = h
	return h
}

// Lookup implements Namer.
func (t *Table) Lookup(id string) (Handle, bool) {
	t.mu.RLock()
	h, ok := t.ids[id]
	t.mu.RUnlock()
	return h, ok
}

// Resolve implements Namer.
func (t *Table) Resolve(h Handle) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if h == 0 || int(h) > len(t.names) {
		return "", &HandleError{Handle: h, Err: ErrUnknownHandle}
	}
	return t.names[h-1], nil
}

// Len returns the number of interned identifiers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Names returns all identifiers in handle order; the identifier of handle h
// is at index h-1. Interning the names in order into an empty table
// reproduces the same handles.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Reset drops all identifiers. Handles issued before Reset must not be reused.
func (t *Table) Reset() {
	t.mu.Lock()
	t.ids = make(map[string]Handle)
	t.names = nil
	t.mu.Unlock()
}
