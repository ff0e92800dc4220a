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

package memstore

import "github.com/cayleygraph/lpgrdf/graph"

// Iterator is a lazy, restartable sequence of triples.
//
// The set of positions is fixed when the iterator is created, so triples
// appended afterwards are not observed.
type Iterator struct {
	ts  *TripleStore
	pos []int
	all bool
	n   int

	i   int
	cur graph.Triple
}

func newIterator(ts *TripleStore, pos []int) *Iterator {
	return &Iterator{ts: ts, pos: pos[:len(pos):len(pos)], n: len(pos)}
}

// Next advances the iterator. It returns false at the end of the sequence.
func (it *Iterator) Next() bool {
	if it.i >= it.n {
		return false
	}
	p := it.i
	if !it.all {
		p = it.pos[it.i]
	}
	if p >= len(it.ts.log) {
		// store was cleared
		it.i = it.n
		return false
	}
	it.cur = it.ts.log[p]
	it.i++
	return true
}

// Result returns the current triple.
func (it *Iterator) Result() graph.Triple {
	return it.cur
}

// Reset rewinds the iterator to the first triple.
func (it *Iterator) Reset() {
	it.i = 0
	it.cur = graph.Triple{}
}

// Len returns the number of triples in the sequence.
func (it *Iterator) Len() int {
	return it.n
}

// Collect drains the remaining triples into a slice.
func (it *Iterator) Collect() []graph.Triple {
	out := make([]graph.Triple, 0, it.n-it.i)
	for it.Next() {
		out = append(out, it.Result())
	}
	return out
}
