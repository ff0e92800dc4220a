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

// Package schema is a registry of named schemas that rename RDF vocabulary
// terms to property graph labels, relationship types and property keys.
//
// The registry only answers lookups. Falling back to a default name for
// unmapped terms is left to the caller.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/voc"
)

var (
	ErrDuplicateMapping = errors.New("mapping already defined")
	ErrDuplicateSchema  = errors.New("schema already defined")
	ErrUnknownSchema    = errors.New("unknown schema")
	ErrMappingNotFound  = errors.New("mapping not found")
)

// MappingError records a failed mapping change.
type MappingError struct {
	Schema    string
	Namespace string
	LocalName string
	Err       error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("schema %q: %s%s: %v", e.Schema, e.Namespace, e.LocalName, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Kind is the property graph element a term is mapped to.
type Kind int

const (
	Label = Kind(iota)
	RelationshipType
	PropertyKey
)

var kindNames = []string{
	Label:            "label",
	RelationshipType: "relationship",
	PropertyKey:      "property",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid mapping kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, name := range kindNames {
		if name == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("invalid mapping kind %q", s)
}

// ID identifies a schema within a registry. The zero ID never names a schema.
type ID int

// Mapping renames one vocabulary term.
type Mapping struct {
	Namespace string `json:"namespace" yaml:"namespace,omitempty"`
	LocalName string `json:"local" yaml:"local"`
	Target    string `json:"target" yaml:"target"`
	Kind      Kind   `json:"kind" yaml:"kind"`
}

// IRI returns the full identifier of the mapped term.
func (m Mapping) IRI() string { return m.Namespace + m.LocalName }

// Schema describes a registered schema.
type Schema struct {
	ID        ID     `json:"id" yaml:"-"`
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Mappings  int    `json:"mappings" yaml:"-"`
}

type target struct {
	kind Kind
	name string
}

type resolved struct {
	m  Mapping
	ok bool
}

type schemaEntry struct {
	id   ID
	name string
	ns   string

	order   []string // IRIs in insertion order
	terms   map[string]Mapping
	reverse map[target]string

	cache map[refs.Handle]resolved
}

func (s *schemaEntry) info() Schema {
	return Schema{ID: s.id, Name: s.name, Namespace: s.ns, Mappings: len(s.order)}
}

func (s *schemaEntry) reindex() {
	s.reverse = make(map[target]string, len(s.order))
	for _, iri := range s.order {
		m := s.terms[iri]
		t := target{kind: m.Kind, name: m.Target}
		if _, ok := s.reverse[t]; !ok {
			s.reverse[t] = iri
		}
	}
	s.cache = nil
}

// Registry holds schemas and caches term resolutions per resource handle.
// It is safe for concurrent use.
type Registry struct {
	names refs.Namer

	mu      sync.RWMutex
	last    ID
	schemas map[ID]*schemaEntry
	byName  map[string]ID
}

// NewRegistry creates an empty registry that resolves handles through names.
func NewRegistry(names refs.Namer) *Registry {
	return &Registry{
		names:   names,
		schemas: make(map[ID]*schemaEntry),
		byName:  make(map[string]ID),
	}
}

// AddSchema registers a schema with a default namespace for its mappings.
func (r *Registry) AddSchema(name, namespace string) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		if r.schemas[id].ns == namespace {
			return id, nil
		}
		return id, fmt.Errorf("schema %q: %w", name, ErrDuplicateSchema)
	}
	r.last++
	s := &schemaEntry{
		id:      r.last,
		name:    name,
		ns:      namespace,
		terms:   make(map[string]Mapping),
		reverse: make(map[target]string),
	}
	r.schemas[s.id] = s
	r.byName[name] = s.id
	return s.id, nil
}

// SchemaByName returns the ID of a named schema.
func (r *Registry) SchemaByName(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Schema returns the description of a schema.
func (r *Registry) Schema(id ID) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	if !ok {
		return Schema{}, fmt.Errorf("schema %d: %w", id, ErrUnknownSchema)
	}
	return s.info(), nil
}

func (r *Registry) get(id ID) (*schemaEntry, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("schema %d: %w", id, ErrUnknownSchema)
	}
	return s, nil
}

func (r *Registry) put(id ID, m Mapping, replace bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	if m.Namespace == "" {
		m.Namespace = s.ns
	}
	if m.LocalName == "" || m.Target == "" {
		return &MappingError{Schema: s.name, Namespace: m.Namespace, LocalName: m.LocalName,
			Err: errors.New("empty term or target")}
	}
	iri := m.IRI()
	if old, ok := s.terms[iri]; ok {
		if old == m {
			return nil
		}
		if !replace {
			return &MappingError{Schema: s.name, Namespace: m.Namespace, LocalName: m.LocalName, Err: ErrDuplicateMapping}
		}
	} else {
		s.order = append(s.order, iri)
	}
	s.terms[iri] = m
	s.reindex()
	return nil
}

// AddMapping maps a term of the schema. An empty namespace stands for the
// schema namespace. Redefining a term with a different target or kind fails
// with ErrDuplicateMapping; use ReplaceMapping to change it.
func (r *Registry) AddMapping(id ID, namespace, local, target string, kind Kind) error {
	return r.put(id, Mapping{Namespace: namespace, LocalName: local, Target: target, Kind: kind}, false)
}

// ReplaceMapping maps a term, overwriting any previous mapping.
func (r *Registry) ReplaceMapping(id ID, namespace, local, target string, kind Kind) error {
	return r.put(id, Mapping{Namespace: namespace, LocalName: local, Target: target, Kind: kind}, true)
}

// DropMapping removes the mapping of a term.
func (r *Registry) DropMapping(id ID, namespace, local string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	if namespace == "" {
		namespace = s.ns
	}
	iri := namespace + local
	if _, ok := s.terms[iri]; !ok {
		return &MappingError{Schema: s.name, Namespace: namespace, LocalName: local, Err: ErrMappingNotFound}
	}
	delete(s.terms, iri)
	for i, v := range s.order {
		if v == iri {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.reindex()
	return nil
}

// DropSchema removes a schema with all its mappings and cached resolutions.
func (r *Registry) DropSchema(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	delete(r.schemas, id)
	delete(r.byName, s.name)
	return nil
}

// InvalidateCache drops all cached resolutions. It must be called when the
// handles of the resolving Namer are reset.
func (r *Registry) InvalidateCache() {
	r.mu.Lock()
	for _, s := range r.schemas {
		s.cache = nil
	}
	r.mu.Unlock()
}

// Resolve returns the mapping of the term a resource handle stands for.
// The boolean is false if the schema has no mapping for it.
func (r *Registry) Resolve(id ID, h refs.Handle) (Mapping, bool, error) {
	r.mu.RLock()
	s, err := r.get(id)
	if err == nil {
		if c, ok := s.cache[h]; ok {
			r.mu.RUnlock()
			mResolveHit.Inc()
			return c.m, c.ok, nil
		}
	}
	r.mu.RUnlock()
	if err != nil {
		return Mapping{}, false, err
	}
	mResolveMiss.Inc()
	iri, err := r.names.Resolve(h)
	if err != nil {
		return Mapping{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemas[id] != s {
		// dropped meanwhile
		return Mapping{}, false, fmt.Errorf("schema %d: %w", id, ErrUnknownSchema)
	}
	m, ok := s.terms[iri]
	if s.cache == nil {
		s.cache = make(map[refs.Handle]resolved)
	}
	s.cache[h] = resolved{m: m, ok: ok}
	return m, ok, nil
}

// ResolveIRI is like Resolve for an identifier that may not be interned.
func (r *Registry) ResolveIRI(id ID, iri string) (Mapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.get(id)
	if err != nil {
		return Mapping{}, false, err
	}
	m, ok := s.terms[iri]
	return m, ok, nil
}

// Reverse returns the identifier of the first term mapped to target with a given kind.
func (r *Registry) Reverse(id ID, name string, kind Kind) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.get(id)
	if err != nil {
		return "", false, err
	}
	iri, ok := s.reverse[target{kind: kind, name: name}]
	return iri, ok, nil
}

// ListSchemas returns schemas whose name or namespace contains filter, sorted by name.
func (r *Registry) ListSchemas(filter string) []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Schema
	for _, s := range r.schemas {
		if filter == "" || strings.Contains(s.name, filter) || strings.Contains(s.ns, filter) {
			out = append(out, s.info())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListMappings returns mappings of a schema in insertion order. A non-empty
// filter keeps mappings whose local name or target contains it.
func (r *Registry) ListMappings(id ID, filter string) ([]Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]Mapping, 0, len(s.order))
	for _, iri := range s.order {
		m := s.terms[iri]
		if filter == "" || strings.Contains(m.LocalName, filter) || strings.Contains(m.Target, filter) {
			out = append(out, m)
		}
	}
	return out, nil
}

// AddCommonSchemas registers a schema for each common vocabulary and, when
// ns is not nil, its prefix.
func (r *Registry) AddCommonSchemas(ns *voc.Namespaces) error {
	for _, v := range voc.Common {
		if _, err := r.AddSchema(v.Prefix, v.Full); err != nil {
			return err
		}
		if ns != nil {
			ns.Register(v)
		}
	}
	return nil
}
