package lpg

// NodeIterator is a lazy, restartable sequence of nodes. The set of nodes is
// fixed when the iterator is created.
type NodeIterator struct {
	s   *Store
	ids []NodeID
	i   int
	cur Node
}

// Next advances the iterator. It returns false at the end of the sequence.
func (it *NodeIterator) Next() bool {
	for it.i < len(it.ids) {
		id := it.ids[it.i]
		it.i++
		if uint64(id) <= uint64(len(it.s.nodes)) {
			it.cur = it.s.snapshotNode(id)
			return true
		}
	}
	return false
}

// Result returns the current node.
func (it *NodeIterator) Result() Node { return it.cur }

// Reset rewinds the iterator.
func (it *NodeIterator) Reset() {
	it.i = 0
	it.cur = Node{}
}

// Len returns the number of nodes in the sequence.
func (it *NodeIterator) Len() int { return len(it.ids) }

// IDs returns the node IDs of the sequence.
func (it *NodeIterator) IDs() []NodeID {
	out := make([]NodeID, len(it.ids))
	copy(out, it.ids)
	return out
}

// Collect drains the remaining nodes into a slice.
func (it *NodeIterator) Collect() []Node {
	out := make([]Node, 0, len(it.ids)-it.i)
	for it.Next() {
		out = append(out, it.Result())
	}
	return out
}

// RelIterator is a lazy, restartable sequence of relationships.
type RelIterator struct {
	s   *Store
	ids []RelID
	i   int
	cur Relationship
}

// Next advances the iterator. It returns false at the end of the sequence.
func (it *RelIterator) Next() bool {
	for it.i < len(it.ids) {
		id := it.ids[it.i]
		it.i++
		if uint64(id) <= uint64(len(it.s.rels)) {
			it.cur = it.s.snapshotRel(id)
			return true
		}
	}
	return false
}

// Result returns the current relationship.
func (it *RelIterator) Result() Relationship { return it.cur }

// Reset rewinds the iterator.
func (it *RelIterator) Reset() {
	it.i = 0
	it.cur = Relationship{}
}

// Len returns the number of relationships in the sequence.
func (it *RelIterator) Len() int { return len(it.ids) }

// Collect drains the remaining relationships into a slice.
func (it *RelIterator) Collect() []Relationship {
	out := make([]Relationship, 0, len(it.ids)-it.i)
	for it.Next() {
		out = append(out, it.Result())
	}
	return out
}
