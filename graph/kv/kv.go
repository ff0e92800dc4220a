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

// Package kv persists engine snapshots in a hidalgo key-value store.
//
// Layout:
//
//	meta/version        data version, little endian
//	meta/active         name of the active schema
//	res/<handle>        resource identifiers in handle order
//	triple/<seq>        triples as N-Quads statements
//	edge/<seq>          hierarchy edges: child, parent, kind
//	name/<seq>          names resources were imported as (JSON)
//	node/<id>           nodes (JSON)
//	rel/<id>            relationships (JSON)
//	meta/namespaces     namespace prefixes (JSON)
//	schema/yaml         schema registry as a YAML mapping file
package kv

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cayleygraph/quad/nquads"
	"github.com/hidal-go/hidalgo/kv"
	"github.com/hidal-go/hidalgo/kv/options"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/inference"
	"github.com/cayleygraph/lpgrdf/voc"
)

const latestDataVersion = 1

var (
	// ErrNotInitialized is returned when loading from a store nothing was saved to.
	ErrNotInitialized = errors.New("kv: not initialized")
	// ErrVersion is returned for data written by an incompatible version.
	ErrVersion = errors.New("kv: data version is out of date")
)

var (
	metaBucket   = kv.Key{[]byte("meta")}
	resBucket    = kv.Key{[]byte("res")}
	tripleBucket = kv.Key{[]byte("triple")}
	edgeBucket   = kv.Key{[]byte("edge")}
	nameBucket   = kv.Key{[]byte("name")}
	nodeBucket   = kv.Key{[]byte("node")}
	relBucket    = kv.Key{[]byte("rel")}
	schemaBucket = kv.Key{[]byte("schema")}

	buckets = []kv.Key{
		metaBucket, resBucket, tripleBucket, edgeBucket, nameBucket,
		nodeBucket, relBucket, schemaBucket,
	}

	versionKey = metaBucket.AppendBytes([]byte("version"))
	activeKey  = metaBucket.AppendBytes([]byte("active"))
	nsKey      = metaBucket.AppendBytes([]byte("namespaces"))
	yamlKey    = schemaBucket.AppendBytes([]byte("yaml"))
)

func seqKey(b kv.Key, x uint64) kv.Key {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, x)
	return b.AppendBytes(k)
}

// storedNode keeps the resource handle that lpg.Node leaves out of JSON.
type storedNode struct {
	lpg.Node
	Resource refs.Handle `json:"resource,omitempty"`
}

type storedRel struct {
	lpg.Relationship
	Resource refs.Handle `json:"resource,omitempty"`
}

func encodeEdge(e inference.Edge) []byte {
	buf := make([]byte, 0, 9)
	buf = binary.BigEndian.AppendUint32(buf, uint32(e.Child))
	buf = binary.BigEndian.AppendUint32(buf, uint32(e.Parent))
	return append(buf, byte(e.Kind))
}

func decodeEdge(b []byte) (inference.Edge, error) {
	if len(b) != 9 {
		return inference.Edge{}, fmt.Errorf("kv: invalid edge record of %d bytes", len(b))
	}
	return inference.Edge{
		Child:  refs.Handle(binary.BigEndian.Uint32(b)),
		Parent: refs.Handle(binary.BigEndian.Uint32(b[4:])),
		Kind:   inference.Relation(b[8]),
	}, nil
}

func cloneKey(k kv.Key) kv.Key {
	out := make(kv.Key, len(k))
	for i, p := range k {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

// isRecord reports whether k is a record of bucket b rather than the
// marker written by kv.CreateBucket.
func isRecord(b, k kv.Key) bool {
	return len(k) > len(b) && len(k[len(k)-1]) != 0
}

// wipe deletes all records under the buckets.
func wipe(ctx context.Context, tx kv.Tx) error {
	for _, b := range buckets {
		var keys []kv.Key
		it := tx.Scan(options.WithPrefixKV(b))
		for it.Next(ctx) {
			if isRecord(b, it.Key()) {
				keys = append(keys, cloneKey(it.Key()))
			}
		}
		err := it.Err()
		it.Close()
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := tx.Del(k); err != nil {
				return err
			}
		}
	}
	return nil
}

func putJSON(tx kv.Tx, k kv.Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Put(k, data)
}

// Save replaces the content of the store with a snapshot of the engine,
// its namespaces and its schemas.
func Save(ctx context.Context, db kv.KV, e *lpgrdf.Engine) error {
	s := e.Snapshot()
	tb := refs.NewTable()
	for _, id := range s.Resources {
		tb.Intern(id)
	}
	var schemas bytes.Buffer
	if err := e.Schemas().WriteYAML(&schemas); err != nil {
		return err
	}
	tx, err := db.Tx(true)
	if err != nil {
		return err
	}
	tx = wrapTx(tx)
	defer tx.Close()
	if err = save(ctx, tx, s, tb, schemas.Bytes(), e.Namespaces().List()); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	if clog.V(1) {
		clog.Infof("kv: saved %d triples, %d nodes, %d relationships", len(s.Triples), len(s.Nodes), len(s.Relationships))
	}
	return nil
}

func save(ctx context.Context, tx kv.Tx, s lpgrdf.Snapshot, tb *refs.Table, schemas []byte, ns []voc.Namespace) error {
	for _, b := range buckets {
		_ = kv.CreateBucket(ctx, tx, b)
	}
	if err := wipe(ctx, tx); err != nil {
		return err
	}
	var ver [8]byte
	binary.LittleEndian.PutUint64(ver[:], latestDataVersion)
	if err := tx.Put(versionKey, ver[:]); err != nil {
		return fmt.Errorf("couldn't write version: %w", err)
	}
	if err := tx.Put(activeKey, []byte(s.ActiveSchema)); err != nil {
		return err
	}
	if err := tx.Put(yamlKey, schemas); err != nil {
		return err
	}
	if err := putJSON(tx, nsKey, ns); err != nil {
		return err
	}
	for i, id := range s.Resources {
		if err := tx.Put(seqKey(resBucket, uint64(i+1)), []byte(id)); err != nil {
			return err
		}
	}
	for i, t := range s.Triples {
		q, err := graph.ToQuad(tb, t)
		if err != nil {
			return err
		}
		if err = tx.Put(seqKey(tripleBucket, uint64(i)), []byte(q.NQuad())); err != nil {
			return err
		}
	}
	for i, edge := range s.Edges {
		if err := tx.Put(seqKey(edgeBucket, uint64(i)), encodeEdge(edge)); err != nil {
			return err
		}
	}
	for i, n := range s.Names {
		if err := putJSON(tx, seqKey(nameBucket, uint64(i)), n); err != nil {
			return err
		}
	}
	for _, n := range s.Nodes {
		if err := putJSON(tx, seqKey(nodeBucket, uint64(n.ID)), storedNode{Node: n, Resource: n.Resource}); err != nil {
			return err
		}
	}
	for _, r := range s.Relationships {
		if err := putJSON(tx, seqKey(relBucket, uint64(r.ID)), storedRel{Relationship: r, Resource: r.Resource}); err != nil {
			return err
		}
	}
	return nil
}

func scan(ctx context.Context, tx kv.Tx, b kv.Key, fn func(v []byte) error) error {
	it := tx.Scan(options.WithPrefixKV(b))
	defer it.Close()
	for it.Next(ctx) {
		if !isRecord(b, it.Key()) {
			continue
		}
		if err := fn(it.Val()); err != nil {
			return err
		}
	}
	return it.Err()
}

type saved struct {
	snap    lpgrdf.Snapshot
	schemas []byte
	ns      []voc.Namespace
}

func read(ctx context.Context, tx kv.Tx) (*saved, error) {
	ver, err := tx.Get(ctx, versionKey)
	if err == kv.ErrNotFound {
		return nil, ErrNotInitialized
	} else if err != nil {
		return nil, err
	} else if len(ver) != 8 || binary.LittleEndian.Uint64(ver) != latestDataVersion {
		return nil, ErrVersion
	}
	var out saved
	s := &out.snap
	if v, err := tx.Get(ctx, activeKey); err == nil {
		s.ActiveSchema = string(v)
	}
	if v, err := tx.Get(ctx, yamlKey); err == nil {
		out.schemas = append([]byte(nil), v...)
	}
	if v, err := tx.Get(ctx, nsKey); err == nil {
		if err = json.Unmarshal(v, &out.ns); err != nil {
			return nil, err
		}
	}
	tb := refs.NewTable()
	if err = scan(ctx, tx, resBucket, func(v []byte) error {
		id := string(v)
		s.Resources = append(s.Resources, id)
		tb.Intern(id)
		return nil
	}); err != nil {
		return nil, err
	}
	if err = scan(ctx, tx, tripleBucket, func(v []byte) error {
		q, err := nquads.Parse(string(v))
		if err != nil {
			return err
		}
		t, err := graph.FromQuad(tb, q)
		if err != nil {
			return err
		}
		s.Triples = append(s.Triples, t)
		return nil
	}); err != nil {
		return nil, err
	}
	if tb.Len() != len(s.Resources) {
		return nil, fmt.Errorf("kv: triples refer to %d unknown resources", tb.Len()-len(s.Resources))
	}
	if err = scan(ctx, tx, edgeBucket, func(v []byte) error {
		edge, err := decodeEdge(v)
		s.Edges = append(s.Edges, edge)
		return err
	}); err != nil {
		return nil, err
	}
	if err = scan(ctx, tx, nameBucket, func(v []byte) error {
		var n lpgrdf.VocabName
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		s.Names = append(s.Names, n)
		return nil
	}); err != nil {
		return nil, err
	}
	if err = scan(ctx, tx, nodeBucket, func(v []byte) error {
		var n storedNode
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		n.Node.Resource = n.Resource
		s.Nodes = append(s.Nodes, n.Node)
		return nil
	}); err != nil {
		return nil, err
	}
	if err = scan(ctx, tx, relBucket, func(v []byte) error {
		var r storedRel
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		r.Relationship.Resource = r.Resource
		s.Relationships = append(s.Relationships, r.Relationship)
		return nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Load replaces the content of the engine with what was saved to the store.
// Schemas and namespace prefixes are added to those the engine already has.
// Nodes come back with the labels they were saved with.
func Load(ctx context.Context, db kv.KV, e *lpgrdf.Engine) error {
	tx, err := db.Tx(false)
	if err != nil {
		return err
	}
	tx = wrapTx(tx)
	out, err := read(ctx, tx)
	tx.Close()
	if err != nil {
		return err
	}
	for _, n := range out.ns {
		e.Namespaces().Register(n)
	}
	if len(out.schemas) != 0 {
		if _, err = e.Schemas().LoadYAML(bytes.NewReader(out.schemas)); err != nil {
			return err
		}
	}
	if err = e.Restore(out.snap); err != nil {
		return err
	}
	if clog.V(1) {
		clog.Infof("kv: loaded %d triples, %d nodes, %d relationships", len(out.snap.Triples), len(out.snap.Nodes), len(out.snap.Relationships))
	}
	return nil
}
