// Package voc implements an RDF namespace (vocabulary) registry.
package voc

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Namespace is a pair of a prefix and the base IRI it stands for.
type Namespace struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Full   string `json:"namespace" yaml:"namespace"`
}

// ByFullName sorts namespaces by their base IRI.
type ByFullName []Namespace

func (a ByFullName) Len() int           { return len(a) }
func (a ByFullName) Less(i, j int) bool { return a[i].Full < a[j].Full }
func (a ByFullName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// Namespaces is a registry of prefix-IRI pairs. The zero value is ready to use.
type Namespaces struct {
	mu       sync.RWMutex
	prefixes map[string]string // prefix -> namespace
	full     map[string]string // namespace -> prefix
	auto     int
}

// New creates an empty registry.
func New() *Namespaces {
	return &Namespaces{}
}

func (p *Namespaces) init() {
	if p.prefixes == nil {
		p.prefixes = make(map[string]string)
		p.full = make(map[string]string)
	}
}

// Register associates a given prefix with a base vocabulary IRI.
// Prefixes are stored without the trailing colon.
func (p *Namespaces) Register(ns Namespace) {
	pref := strings.TrimSuffix(ns.Prefix, ":")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.init()
	if old, ok := p.prefixes[pref]; ok {
		delete(p.full, old)
	}
	if old, ok := p.full[ns.Full]; ok {
		delete(p.prefixes, old)
	}
	p.prefixes[pref] = ns.Full
	p.full[ns.Full] = pref
}

// Unregister removes a prefix.
func (p *Namespaces) Unregister(prefix string) bool {
	prefix = strings.TrimSuffix(prefix, ":")
	p.mu.Lock()
	defer p.mu.Unlock()
	ns, ok := p.prefixes[prefix]
	if !ok {
		return false
	}
	delete(p.prefixes, prefix)
	delete(p.full, ns)
	return true
}

// PrefixOf returns the prefix registered for a namespace.
func (p *Namespaces) PrefixOf(ns string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pref, ok := p.full[ns]
	return pref, ok
}

// Lookup returns the namespace registered for a prefix.
func (p *Namespaces) Lookup(prefix string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ns, ok := p.prefixes[strings.TrimSuffix(prefix, ":")]
	return ns, ok
}

// Ensure returns the prefix of a namespace, generating and registering
// a new one ("ns0", "ns1", ...) if the namespace is unknown.
func (p *Namespaces) Ensure(ns string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.init()
	if pref, ok := p.full[ns]; ok {
		return pref
	}
	for {
		pref := fmt.Sprintf("ns%d", p.auto)
		p.auto++
		if _, taken := p.prefixes[pref]; taken {
			continue
		}
		p.prefixes[pref] = ns
		p.full[ns] = pref
		return pref
	}
}

// ShortIRI replaces a base IRI of a known vocabulary with it's prefix.
//
//	ShortIRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type") // returns "rdf:type"
func (p *Namespaces) ShortIRI(iri string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	best, bestNS := "", ""
	for ns, pref := range p.full {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = pref, ns
		}
	}
	if bestNS == "" {
		return iri
	}
	return best + ":" + iri[len(bestNS):]
}

// FullIRI replaces known prefix in IRI with it's full vocabulary IRI.
//
//	FullIRI("rdf:type") // returns "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
func (p *Namespaces) FullIRI(iri string) string {
	i := strings.IndexByte(iri, ':')
	if i < 0 {
		return iri
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ns, ok := p.prefixes[iri[:i]]; ok {
		return ns + iri[i+1:]
	}
	return iri
}

// List enumerates all registered prefix-IRI pairs, sorted by prefix.
func (p *Namespaces) List() []Namespace {
	p.mu.RLock()
	out := make([]Namespace, 0, len(p.prefixes))
	for pref, ns := range p.prefixes {
		out = append(out, Namespace{Prefix: pref, Full: ns})
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// Clone returns an independent copy of the registry.
func (p *Namespaces) Clone() *Namespaces {
	n := New()
	p.mu.RLock()
	defer p.mu.RUnlock()
	n.init()
	for pref, ns := range p.prefixes {
		n.prefixes[pref] = ns
		n.full[ns] = pref
	}
	n.auto = p.auto
	return n
}

// Reset removes all registered prefixes.
func (p *Namespaces) Reset() {
	p.mu.Lock()
	p.prefixes, p.full, p.auto = nil, nil, 0
	p.mu.Unlock()
}

// Split separates an IRI into its namespace and local name. The namespace
// ends with the last '#', '/' or ':' of the IRI.
func Split(iri string) (ns, local string) {
	i := strings.LastIndexAny(iri, "#/:")
	if i < 0 || i == len(iri)-1 {
		return "", iri
	}
	return iri[:i+1], iri[i+1:]
}
