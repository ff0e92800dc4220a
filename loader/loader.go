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

// Package loader reads RDF files into triples and imports them into an engine.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/internal/decompressor"
	"github.com/cayleygraph/lpgrdf/schema"
)

// DefaultBatch is the number of triples passed to the engine at once.
const DefaultBatch = 10000

// DefaultFormat is used when neither a format name nor a known file
// extension is given.
const DefaultFormat = "nquads"

// Format returns a registered quad format by name, or by the extension of
// path if name is empty. Compression suffixes are ignored.
func Format(name, path string) (*quad.Format, error) {
	if name == "" {
		p := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".bz2")
		if f := quad.FormatByExt(filepath.Ext(p)); f != nil {
			return f, nil
		}
		name = DefaultFormat
	}
	if name == "quad" || name == "nq" {
		name = "nquads"
	}
	f := quad.FormatByName(name)
	if f == nil {
		return nil, fmt.Errorf("unknown quad format %q", name)
	} else if f.Reader == nil {
		return nil, fmt.Errorf("decoding of %q is not supported", name)
	}
	return f, nil
}

// Open opens a local file or fetches an http(s) URL.
func Open(path string) (io.ReadCloser, error) {
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "file" || u.Scheme == "" {
		if err == nil && u.Scheme != "" {
			path = filepath.Join(u.Host, u.Path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open file %q: %w", path, err)
		}
		return f, nil
	}
	resp, err := http.Get(path)
	if err != nil {
		return nil, fmt.Errorf("could not get resource <%s>: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("could not get resource <%s>: %s", u, resp.Status)
	}
	return resp.Body, nil
}

// Reader decodes an RDF stream into triples.
type Reader struct {
	qr quad.ReadCloser
	tb *refs.Table
	n  int
}

// NewReader decompresses r if needed and decodes it with a format. Terms
// are interned into tb.
func NewReader(r io.Reader, f *quad.Format, tb *refs.Table) (*Reader, error) {
	r, comp, err := decompressor.New(r)
	if err != nil {
		return nil, err
	}
	if comp != decompressor.None && clog.V(2) {
		clog.Infof("loader: reading %s compressed %s", comp, f.Name)
	}
	return &Reader{qr: f.Reader(r), tb: tb}, nil
}

// Read returns the next triple, or io.EOF at the end of the stream.
func (r *Reader) Read() (graph.Triple, error) {
	q, err := r.qr.ReadQuad()
	if err != nil {
		return graph.Triple{}, err
	}
	r.n++
	t, err := graph.FromQuad(r.tb, q)
	if err != nil {
		return graph.Triple{}, fmt.Errorf("statement %d: %w", r.n, err)
	}
	return t, nil
}

// Close closes the underlying decoder.
func (r *Reader) Close() error { return r.qr.Close() }

// ReadAll decodes a whole stream without storing it anywhere.
func ReadAll(r io.Reader, f *quad.Format, tb *refs.Table) ([]graph.Triple, error) {
	tr, err := NewReader(r, f, tb)
	if err != nil {
		return nil, err
	}
	defer tr.Close()
	var out []graph.Triple
	for {
		t, err := tr.Read()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, t)
	}
}

// Options configures a Load.
type Options struct {
	// Format name. Empty means detect by path, then DefaultFormat.
	Format string
	// Schema used to map terms. Zero maps by the vocabulary URI policy.
	Schema schema.ID
	// Batch size; DefaultBatch if not positive.
	Batch int
	// Hierarchy only feeds subclass and subproperty statements to the
	// hierarchy index and skips everything else.
	Hierarchy bool
	// NoWait fails a batch with lpgrdf.ErrBusy instead of waiting for an
	// import that is already in progress.
	NoWait bool
}

// ingester adapts an engine to quad.BatchWriter.
type ingester struct {
	ctx   context.Context
	e     *lpgrdf.Engine
	opts  Options
	n     int
	stats lpgrdf.ImportStats
	edges int
}

func (w *ingester) WriteQuads(quads []quad.Quad) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	batch := make([]graph.Triple, 0, len(quads))
	for _, q := range quads {
		w.n++
		t, err := graph.FromQuad(w.e.Refs(), q)
		if err != nil {
			return 0, fmt.Errorf("statement %d: %w", w.n, err)
		}
		batch = append(batch, t)
	}
	if w.opts.Hierarchy {
		n, err := w.e.IngestHierarchy(batch)
		w.edges += n
		if err != nil {
			return 0, err
		}
	} else {
		ingest := w.e.Ingest
		if w.opts.NoWait {
			ingest = w.e.TryIngest
		}
		st, err := ingest(batch, w.opts.Schema)
		w.stats.Add(st)
		if err != nil {
			return 0, err
		}
	}
	if clog.V(2) {
		clog.Infof("loader: wrote %d statements", w.n)
	}
	return len(quads), nil
}

// Load decodes r and imports it into the engine in batches. Batches already
// ingested stay imported when a later one fails.
func Load(ctx context.Context, e *lpgrdf.Engine, r io.Reader, opts Options) (lpgrdf.ImportStats, error) {
	f, err := Format(opts.Format, "")
	if err != nil {
		return lpgrdf.ImportStats{}, err
	}
	return load(ctx, e, r, f, opts)
}

func load(ctx context.Context, e *lpgrdf.Engine, r io.Reader, f *quad.Format, opts Options) (lpgrdf.ImportStats, error) {
	if opts.Batch <= 0 {
		opts.Batch = DefaultBatch
	}
	r, _, err := decompressor.New(r)
	if err != nil {
		return lpgrdf.ImportStats{}, err
	}
	qr := f.Reader(r)
	defer qr.Close()
	w := &ingester{ctx: ctx, e: e, opts: opts}
	if _, err = quad.CopyBatch(w, qr, opts.Batch); err != nil {
		return w.stats, fmt.Errorf("failed to load data: %w", err)
	}
	if opts.Hierarchy {
		w.stats.Edges = w.edges
	}
	return w.stats, nil
}

// LoadPath loads a file or URL. The format is detected from the path when
// opts.Format is empty.
func LoadPath(ctx context.Context, e *lpgrdf.Engine, path string, opts Options) (lpgrdf.ImportStats, error) {
	f, err := Format(opts.Format, path)
	if err != nil {
		return lpgrdf.ImportStats{}, err
	}
	rc, err := Open(path)
	if err != nil {
		return lpgrdf.ImportStats{}, err
	}
	defer rc.Close()
	st, err := load(ctx, e, rc, f, opts)
	if err == nil && clog.V(1) {
		clog.Infof("loader: %s: %d triples, %d duplicates", path, st.Triples, st.Duplicates)
	}
	return st, err
}
