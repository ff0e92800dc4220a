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

// Package lpg is an in-memory labeled property graph.
//
// Nodes carry a set of labels and relationships carry a single type; both
// have properties. Nodes and relationships built from RDF keep a reference
// to the resource they originate from.
package lpg

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// NodeID identifies a node. IDs are assigned densely from 1.
type NodeID uint64

func (id NodeID) String() string { return strconv.FormatUint(uint64(id), 10) }

// RelID identifies a relationship. IDs are assigned densely from 1.
type RelID uint64

func (id RelID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Properties maps property keys to values.
type Properties map[string]graph.Value

func (p Properties) clone() Properties {
	if len(p) == 0 {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is a snapshot of a graph node.
type Node struct {
	ID         NodeID      `json:"id"`
	Labels     []string    `json:"labels"`
	Properties Properties  `json:"properties,omitempty"`
	Resource   refs.Handle `json:"-"`
}

// HasLabel reports whether the node carries a label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Relationship is a snapshot of a graph relationship.
type Relationship struct {
	ID         RelID       `json:"id"`
	Type       string      `json:"type"`
	Start      NodeID      `json:"start"`
	End        NodeID      `json:"end"`
	Properties Properties  `json:"properties,omitempty"`
	Resource   refs.Handle `json:"-"`
}

// Direction selects relationships by their orientation relative to a node.
type Direction int

const (
	Outgoing = Direction(iota)
	Incoming
	Both
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "out"
	case Incoming:
		return "in"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses the output of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "out", "outgoing", "":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	case "both", "any":
		return Both, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// Expander expands a label or a relationship type to every label or type
// that is inferred to be a member of it, the argument included.
type Expander interface {
	ExpandLabel(label string) ([]string, error)
	ExpandType(typ string) ([]string, error)
}

type node struct {
	labels []string
	props  Properties
	res    refs.Handle
}

func (n *node) hasLabel(l string) bool {
	for _, x := range n.labels {
		if x == l {
			return true
		}
	}
	return false
}

type rel struct {
	typ        string
	start, end NodeID
	props      Properties
	res        refs.Handle
}

type relKey struct {
	typ        string
	start, end NodeID
}

// Store holds nodes and relationships.
//
// The store does no locking; callers serialize writes and must not read
// while a write is in progress.
type Store struct {
	nodes []*node // nodes[id-1]
	rels  []*rel  // rels[id-1]

	byResource map[refs.Handle]NodeID
	byLabel    map[string][]NodeID
	byType     map[string][]RelID
	relKeys    map[relKey]RelID
	out        map[NodeID][]RelID
	in         map[NodeID][]RelID

	expander Expander
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.init()
	return s
}

func (s *Store) init() {
	s.nodes = nil
	s.rels = nil
	s.byResource = make(map[refs.Handle]NodeID)
	s.byLabel = make(map[string][]NodeID)
	s.byType = make(map[string][]RelID)
	s.relKeys = make(map[relKey]RelID)
	s.out = make(map[NodeID][]RelID)
	s.in = make(map[NodeID][]RelID)
}

// SetExpander sets the expander used by inferred queries.
func (s *Store) SetExpander(e Expander) { s.expander = e }

func (s *Store) node(id NodeID) (*node, error) {
	if id == 0 || uint64(id) > uint64(len(s.nodes)) {
		return nil, fmt.Errorf("node %v: %w", id, ErrNodeNotFound)
	}
	return s.nodes[id-1], nil
}

func (s *Store) rel(id RelID) (*rel, error) {
	if id == 0 || uint64(id) > uint64(len(s.rels)) {
		return nil, fmt.Errorf("relationship %v: %w", id, ErrRelationshipNotFound)
	}
	return s.rels[id-1], nil
}

func (s *Store) addLabels(id NodeID, n *node, labels []string) {
	for _, l := range labels {
		if l == "" || n.hasLabel(l) {
			continue
		}
		n.labels = append(n.labels, l)
		s.byLabel[l] = append(s.byLabel[l], id)
	}
}

func (s *Store) newNode(res refs.Handle) (NodeID, *node) {
	n := &node{res: res}
	s.nodes = append(s.nodes, n)
	id := NodeID(len(s.nodes))
	if res.Valid() {
		s.byResource[res] = id
	}
	mNodesCreated.Inc()
	return id, n
}

// UpsertNode returns the node of a resource, creating it if needed. Labels
// are added to the existing set and properties overwrite existing keys.
func (s *Store) UpsertNode(res refs.Handle, labels []string, props Properties) NodeID {
	id, ok := s.byResource[res]
	var n *node
	if ok {
		n = s.nodes[id-1]
	} else {
		id, n = s.newNode(res)
	}
	s.addLabels(id, n, labels)
	for k, v := range props {
		if n.props == nil {
			n.props = make(Properties)
		}
		n.props[k] = v
	}
	return id
}

// CreateNode creates a node that has no originating resource.
func (s *Store) CreateNode(labels []string, props Properties) NodeID {
	id, n := s.newNode(0)
	s.addLabels(id, n, labels)
	n.props = props.clone()
	return id
}

// AddLabels adds labels to a node.
func (s *Store) AddLabels(id NodeID, labels ...string) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	s.addLabels(id, n, labels)
	return nil
}

// SetProperty sets a node property, replacing any previous value.
func (s *Store) SetProperty(id NodeID, key string, v graph.Value) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	if n.props == nil {
		n.props = make(Properties)
	}
	n.props[key] = v
	return nil
}

// AppendProperty adds a value to a node property, turning it into an array
// of distinct values when a value is already set.
func (s *Store) AppendProperty(id NodeID, key string, v graph.Value) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	if n.props == nil {
		n.props = make(Properties)
	}
	if old, ok := n.props[key]; ok {
		n.props[key] = old.Append(v)
	} else {
		n.props[key] = v
	}
	return nil
}

func (s *Store) addRel(typ string, start, end NodeID, res refs.Handle, props Properties) RelID {
	s.rels = append(s.rels, &rel{typ: typ, start: start, end: end, res: res, props: props.clone()})
	id := RelID(len(s.rels))
	s.byType[typ] = append(s.byType[typ], id)
	s.out[start] = append(s.out[start], id)
	s.in[end] = append(s.in[end], id)
	mRelsCreated.Inc()
	return id
}

// UpsertRelationship returns the relationship of a type between the nodes of
// two resources, creating nodes and the relationship as needed. Properties
// overwrite existing keys. The predicate resource, if valid, is kept as the
// relationship's origin.
func (s *Store) UpsertRelationship(typ string, pred, start, end refs.Handle, props Properties) RelID {
	from := s.UpsertNode(start, nil, nil)
	to := s.UpsertNode(end, nil, nil)
	key := relKey{typ: typ, start: from, end: to}
	if id, ok := s.relKeys[key]; ok {
		r := s.rels[id-1]
		for k, v := range props {
			if r.props == nil {
				r.props = make(Properties)
			}
			r.props[k] = v
		}
		return id
	}
	id := s.addRel(typ, from, to, pred, props)
	s.relKeys[key] = id
	return id
}

// CreateRelationship creates a relationship between existing nodes.
// Unlike UpsertRelationship it never merges with an existing relationship.
func (s *Store) CreateRelationship(typ string, start, end NodeID, props Properties) (RelID, error) {
	if _, err := s.node(start); err != nil {
		return 0, err
	}
	if _, err := s.node(end); err != nil {
		return 0, err
	}
	id := s.addRel(typ, start, end, 0, props)
	key := relKey{typ: typ, start: start, end: end}
	if _, ok := s.relKeys[key]; !ok {
		s.relKeys[key] = id
	}
	return id, nil
}

func (s *Store) snapshotNode(id NodeID) Node {
	n := s.nodes[id-1]
	labels := make([]string, len(n.labels))
	copy(labels, n.labels)
	return Node{ID: id, Labels: labels, Properties: n.props.clone(), Resource: n.res}
}

func (s *Store) snapshotRel(id RelID) Relationship {
	r := s.rels[id-1]
	return Relationship{ID: id, Type: r.typ, Start: r.start, End: r.end, Properties: r.props.clone(), Resource: r.res}
}

// Node returns a node by ID.
func (s *Store) Node(id NodeID) (Node, error) {
	if _, err := s.node(id); err != nil {
		return Node{}, err
	}
	return s.snapshotNode(id), nil
}

// NodeByResource returns the node built from a resource.
func (s *Store) NodeByResource(res refs.Handle) (Node, bool) {
	id, ok := s.byResource[res]
	if !ok {
		return Node{}, false
	}
	return s.snapshotNode(id), true
}

// Relationship returns a relationship by ID.
func (s *Store) Relationship(id RelID) (Relationship, error) {
	if _, err := s.rel(id); err != nil {
		return Relationship{}, err
	}
	return s.snapshotRel(id), nil
}

// Nodes returns all nodes in creation order.
func (s *Store) Nodes() *NodeIterator {
	ids := make([]NodeID, len(s.nodes))
	for i := range ids {
		ids[i] = NodeID(i + 1)
	}
	return &NodeIterator{s: s, ids: ids}
}

// Relationships returns all relationships in creation order.
func (s *Store) Relationships() *RelIterator {
	ids := make([]RelID, len(s.rels))
	for i := range ids {
		ids[i] = RelID(i + 1)
	}
	return &RelIterator{s: s, ids: ids}
}

// NodesWithLabel returns nodes carrying a label. With inferred set, nodes
// carrying any label the expander infers to be a sublabel are included.
func (s *Store) NodesWithLabel(label string, inferred bool) (*NodeIterator, error) {
	if !inferred || s.expander == nil {
		return s.NodesWithLabels(label), nil
	}
	labels, err := s.expander.ExpandLabel(label)
	if err != nil {
		return nil, err
	}
	return s.NodesWithLabels(labels...), nil
}

// NodesWithLabels returns nodes carrying any of the labels. Nodes are listed
// once, grouped by the first matching label.
func (s *Store) NodesWithLabels(labels ...string) *NodeIterator {
	if len(labels) == 1 {
		ids := s.byLabel[labels[0]]
		return &NodeIterator{s: s, ids: ids[:len(ids):len(ids)]}
	}
	seen := make(map[NodeID]struct{})
	var ids []NodeID
	for _, l := range labels {
		for _, id := range s.byLabel[l] {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return &NodeIterator{s: s, ids: ids}
}

// HasLabel reports whether any node carries a label.
func (s *Store) HasLabel(label string) bool {
	return len(s.byLabel[label]) != 0
}

// HasType reports whether any relationship has a type.
func (s *Store) HasType(typ string) bool {
	return len(s.byType[typ]) != 0
}

// RelationshipsOfType returns relationships of a type. With inferred set,
// relationships of any inferred subtype are included.
func (s *Store) RelationshipsOfType(typ string, inferred bool) (*RelIterator, error) {
	if !inferred || s.expander == nil {
		return s.RelationshipsOfTypes(typ), nil
	}
	types, err := s.expander.ExpandType(typ)
	if err != nil {
		return nil, err
	}
	return s.RelationshipsOfTypes(types...), nil
}

// RelationshipsOfTypes returns relationships having any of the types.
func (s *Store) RelationshipsOfTypes(types ...string) *RelIterator {
	var ids []RelID
	for _, t := range types {
		ids = append(ids, s.byType[t]...)
	}
	return &RelIterator{s: s, ids: ids}
}

// RelationshipsOf returns relationships attached to a node in a direction.
// An empty types list matches any type.
func (s *Store) RelationshipsOf(id NodeID, dir Direction, types ...string) ([]Relationship, error) {
	if _, err := s.node(id); err != nil {
		return nil, err
	}
	var match func(string) bool
	if len(types) == 0 {
		match = func(string) bool { return true }
	} else {
		set := make(map[string]struct{}, len(types))
		for _, t := range types {
			set[t] = struct{}{}
		}
		match = func(t string) bool {
			_, ok := set[t]
			return ok
		}
	}
	var out []Relationship
	add := func(ids []RelID) {
		for _, rid := range ids {
			if match(s.rels[rid-1].typ) {
				out = append(out, s.snapshotRel(rid))
			}
		}
	}
	if dir == Outgoing || dir == Both {
		add(s.out[id])
	}
	if dir == Incoming || dir == Both {
		add(s.in[id])
	}
	return out, nil
}

// Labels returns all labels in use, sorted.
func (s *Store) Labels() []string {
	out := make([]string, 0, len(s.byLabel))
	for l := range s.byLabel {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Types returns all relationship types in use, sorted.
func (s *Store) Types() []string {
	out := make([]string, 0, len(s.byType))
	for t := range s.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// RelationshipCount returns the number of relationships.
func (s *Store) RelationshipCount() int { return len(s.rels) }

// RestoreNode adds a previously exported node. Nodes must be restored in ID
// order into an empty or partially restored store.
func (s *Store) RestoreNode(n Node) error {
	if want := NodeID(len(s.nodes) + 1); n.ID != want {
		return fmt.Errorf("restore node %v: expected id %v", n.ID, want)
	}
	id, nd := s.newNode(n.Resource)
	s.addLabels(id, nd, n.Labels)
	nd.props = n.Properties.clone()
	return nil
}

// RestoreRelationship adds a previously exported relationship, in ID order.
func (s *Store) RestoreRelationship(r Relationship) error {
	if want := RelID(len(s.rels) + 1); r.ID != want {
		return fmt.Errorf("restore relationship %v: expected id %v", r.ID, want)
	}
	if _, err := s.node(r.Start); err != nil {
		return err
	}
	if _, err := s.node(r.End); err != nil {
		return err
	}
	id := s.addRel(r.Type, r.Start, r.End, r.Resource, r.Properties)
	key := relKey{typ: r.Type, start: r.Start, end: r.End}
	if _, ok := s.relKeys[key]; !ok {
		s.relKeys[key] = id
	}
	return nil
}

// Clear removes all nodes and relationships. IDs restart from 1.
func (s *Store) Clear() {
	s.init()
}
