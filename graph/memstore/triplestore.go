// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package memstore is an append-only in-memory triple store with
// secondary indexes by subject, predicate and object.
package memstore

import (
	"encoding/binary"

	"github.com/cayleygraph/quad"
	boom "github.com/tylertreat/BoomFilters"

	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

const (
	bloomCapacity = 1 << 20
	bloomFPRate   = 0.01
)

// directionIndex maps a resource to the log positions of the triples
// that reference it in one direction. Positions are kept in insertion order.
type directionIndex [3]map[refs.Handle][]int

func newDirectionIndex() directionIndex {
	return directionIndex{
		quad.Subject - 1:   make(map[refs.Handle][]int),
		quad.Predicate - 1: make(map[refs.Handle][]int),
		quad.Object - 1:    make(map[refs.Handle][]int),
	}
}

func (di directionIndex) add(d quad.Direction, h refs.Handle, pos int) {
	di[d-1][h] = append(di[d-1][h], pos)
}

func (di directionIndex) get(d quad.Direction, h refs.Handle) []int {
	if d < quad.Subject || d > quad.Object {
		panic("illegal direction")
	}
	return di[d-1][h]
}

// TripleStore holds triples with set semantics.
//
// The store does no locking; callers serialize writes and must not read
// while a write is in progress.
type TripleStore struct {
	log    []graph.Triple
	exists map[graph.Triple]struct{}
	bloom  *boom.BloomFilter
	index  directionIndex
	buf    []byte
}

// NewTripleStore creates an empty store.
func NewTripleStore() *TripleStore {
	return &TripleStore{
		exists: make(map[graph.Triple]struct{}),
		bloom:  boom.NewBloomFilter(bloomCapacity, bloomFPRate),
		index:  newDirectionIndex(),
	}
}

func (ts *TripleStore) key(t graph.Triple) []byte {
	b := ts.buf[:0]
	b = binary.BigEndian.AppendUint32(b, uint32(t.Subject))
	b = binary.BigEndian.AppendUint32(b, uint32(t.Predicate))
	if h, ok := t.Object.Handle(); ok {
		b = binary.BigEndian.AppendUint32(b, uint32(h))
	} else {
		l, _ := t.Object.Literal()
		b = append(b, 0)
		b = append(b, l.Lexical...)
		b = append(b, 0)
		b = append(b, l.Datatype...)
		b = append(b, 0)
		b = append(b, l.Lang...)
	}
	ts.buf = b
	return b
}

// Has reports whether a triple is stored.
func (ts *TripleStore) Has(t graph.Triple) bool {
	_, ok := ts.exists[t]
	return ok
}

// Add stores a triple. It returns false if the triple was already present.
func (ts *TripleStore) Add(t graph.Triple) bool {
	// A negative bloom test skips the map lookup on fresh triples.
	if ts.bloom.TestAndAdd(ts.key(t)) {
		if _, ok := ts.exists[t]; ok {
			return false
		}
	}
	pos := len(ts.log)
	ts.log = append(ts.log, t)
	ts.exists[t] = struct{}{}
	ts.index.add(quad.Subject, t.Subject, pos)
	ts.index.add(quad.Predicate, t.Predicate, pos)
	if h, ok := t.Object.Handle(); ok {
		ts.index.add(quad.Object, h, pos)
	}
	return true
}

// Size returns the number of stored triples.
func (ts *TripleStore) Size() int {
	return len(ts.log)
}

// Quads returns an iterator over triples that reference h in direction d.
func (ts *TripleStore) Quads(d quad.Direction, h refs.Handle) *Iterator {
	return newIterator(ts, ts.index.get(d, h))
}

// BySubject returns triples with a given subject, in insertion order.
func (ts *TripleStore) BySubject(h refs.Handle) *Iterator {
	return ts.Quads(quad.Subject, h)
}

// ByPredicate returns triples with a given predicate, in insertion order.
func (ts *TripleStore) ByPredicate(h refs.Handle) *Iterator {
	return ts.Quads(quad.Predicate, h)
}

// ByObject returns triples with a given resource object, in insertion order.
func (ts *TripleStore) ByObject(h refs.Handle) *Iterator {
	return ts.Quads(quad.Object, h)
}

// All returns all triples in insertion order.
func (ts *TripleStore) All() *Iterator {
	return &Iterator{ts: ts, all: true, n: len(ts.log)}
}

// Clear removes all triples.
func (ts *TripleStore) Clear() {
	if clog.V(2) {
		clog.Infof("memstore: clearing %d triples", len(ts.log))
	}
	ts.log = nil
	ts.exists = make(map[graph.Triple]struct{})
	ts.bloom.Reset()
	ts.index = newDirectionIndex()
}
