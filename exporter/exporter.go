// Package exporter writes stored triples and property graph nodes back as RDF.
package exporter

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
	"github.com/piprate/json-gold/ld"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

// DefaultBase prefixes names that no schema maps back to an IRI.
const DefaultBase = "urn:lpgrdf:"

// Exporter converts the content of an engine to RDF.
type Exporter struct {
	e *lpgrdf.Engine
	// Base is used for names of native nodes that have no IRI.
	Base string
}

// New creates an exporter for an engine.
func New(e *lpgrdf.Engine) *Exporter {
	return &Exporter{e: e, Base: DefaultBase}
}

func (x *Exporter) quads(triples []graph.Triple) ([]quad.Quad, error) {
	out := make([]quad.Quad, 0, len(triples))
	for _, t := range triples {
		q, err := graph.ToQuad(x.e.Refs(), t)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Quads returns all stored triples.
func (x *Exporter) Quads() ([]quad.Quad, error) {
	return x.quads(x.e.Triples())
}

// ResourceQuads returns the stored triples about a resource.
func (x *Exporter) ResourceQuads(iri string) ([]quad.Quad, error) {
	return x.quads(x.e.TriplesBySubject(iri))
}

// iri maps a property graph name back to an IRI: through the active
// schema, then by undoing the vocabulary URI policy.
func (x *Exporter) iri(name string, kind schema.Kind) string {
	if id := x.e.ActiveSchema(); id != 0 {
		if iri, ok, err := x.e.Schemas().Reverse(id, name, kind); err == nil && ok {
			return iri
		}
	}
	if strings.Contains(name, "://") || strings.HasPrefix(name, "urn:") {
		return name
	}
	if i := strings.Index(name, "__"); i > 0 {
		if full, ok := x.e.Namespaces().Lookup(name[:i]); ok {
			return full + name[i+2:]
		}
	}
	return x.Base + name
}

func (x *Exporter) subject(n lpg.Node) quad.Value {
	if iri, ok := x.e.URI(n.Resource); ok {
		return graph.ResourceValue(iri)
	}
	return quad.BNode("n" + strconv.FormatUint(uint64(n.ID), 10))
}

// NodeQuads describes a node. Nodes imported from RDF are described by
// their stored triples. Nodes created natively get a blank node subject and
// their labels, properties and outgoing relationships are mapped back to
// IRIs.
func (x *Exporter) NodeQuads(id lpg.NodeID) ([]quad.Quad, error) {
	n, err := x.e.NodeByID(id)
	if err != nil {
		return nil, err
	}
	if iri, ok := x.e.URI(n.Resource); ok {
		return x.ResourceQuads(iri)
	}
	opts := x.e.Options()
	s := x.subject(n)
	var out []quad.Quad
	for _, l := range n.Labels {
		if l == opts.ResourceLabel {
			continue
		}
		out = append(out, quad.Make(s, quad.IRI(voc.RDFType), quad.IRI(x.iri(l, schema.Label)), nil))
	}
	for _, k := range n.Properties.Keys() {
		if k == opts.URIProperty {
			continue
		}
		p := quad.IRI(x.iri(k, schema.PropertyKey))
		for _, v := range n.Properties[k].Values() {
			out = append(out, quad.Make(s, p, graph.LiteralOf(v).Quad(), nil))
		}
	}
	rels, err := x.e.RelationshipsOf(id, lpg.Outgoing)
	if err != nil {
		return nil, err
	}
	for _, r := range rels {
		end, err := x.e.NodeByID(r.End)
		if err != nil {
			return nil, err
		}
		out = append(out, quad.Make(s, quad.IRI(x.iri(r.Type, schema.RelationshipType)), x.subject(end), nil))
	}
	return out, nil
}

// Write encodes quads in a registered format.
func Write(w io.Writer, format string, quads []quad.Quad) (int, error) {
	if format == "" || format == "quad" {
		format = "nquads"
	}
	f := quad.FormatByName(format)
	if f == nil {
		return 0, fmt.Errorf("unsupported format: %q", format)
	} else if f.Writer == nil {
		return 0, fmt.Errorf("encoding in %s format is not supported", format)
	}
	qw := f.Writer(w)
	n, err := quad.Copy(qw, quad.NewReader(quads))
	if err != nil {
		qw.Close()
		return n, err
	}
	return n, qw.Close()
}

// Dump writes all stored triples to a file, or to stdout for "-". A ".gz"
// suffix compresses the output. The format is detected by extension when
// empty.
func (x *Exporter) Dump(path, format string) (int, error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("could not open file %q: %w", path, err)
		}
		defer f.Close()
		w = f
		if filepath.Ext(path) == ".gz" {
			zw := gzip.NewWriter(f)
			defer zw.Close()
			w = zw
		}
		if format == "" {
			if qf := quad.FormatByExt(filepath.Ext(strings.TrimSuffix(path, ".gz"))); qf != nil {
				format = qf.Name
			}
		}
	}
	quads, err := x.Quads()
	if err != nil {
		return 0, err
	}
	n, err := Write(w, format, quads)
	if err == nil && clog.V(1) {
		clog.Infof("exporter: %d triples written to %s", n, path)
	}
	return n, err
}

// Context returns a JSON-LD context with the registered prefixes.
func (x *Exporter) Context() map[string]interface{} {
	ctx := make(map[string]interface{})
	for _, ns := range x.e.Namespaces().List() {
		ctx[ns.Prefix] = ns.Full
	}
	return ctx
}

func dataset(quads []quad.Quad) (*ld.RDFDataset, error) {
	d := ld.NewRDFDataset()
	const g = "@default"
	for _, q := range quads {
		s, err := jsonld.ToNode(q.Subject)
		if err != nil {
			return nil, err
		}
		p, err := jsonld.ToNode(q.Predicate)
		if err != nil {
			return nil, err
		}
		o, err := jsonld.ToNode(q.Object)
		if err != nil {
			return nil, err
		}
		d.Graphs[g] = append(d.Graphs[g], ld.NewQuad(s, p, o, g))
	}
	return d, nil
}

// Document compacts quads into a JSON-LD document using Context.
func (x *Exporter) Document(quads []quad.Quad) (map[string]interface{}, error) {
	d, err := dataset(quads)
	if err != nil {
		return nil, err
	}
	api := ld.NewJsonLdApi()
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	doc, err := api.FromRDF(d, opts)
	if err != nil {
		return nil, err
	}
	return proc.Compact(doc, x.Context(), opts)
}

// NodeDocument describes a node as a compacted JSON-LD document.
func (x *Exporter) NodeDocument(id lpg.NodeID) (map[string]interface{}, error) {
	quads, err := x.NodeQuads(id)
	if err != nil {
		return nil, err
	}
	return x.Document(quads)
}

// ResourceDocument describes a resource as a compacted JSON-LD document.
func (x *Exporter) ResourceDocument(iri string) (map[string]interface{}, error) {
	quads, err := x.ResourceQuads(iri)
	if err != nil {
		return nil, err
	}
	return x.Document(quads)
}
