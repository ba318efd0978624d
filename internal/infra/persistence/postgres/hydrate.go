package postgres

import "github.com/google/uuid"

// rowGrouper accumulates flat join rows into per-parent child slices. Joined
// queries duplicate the parent columns once per child row, emit NULL child
// columns when a parent has no children, and can repeat a child when the join
// fans out; the grouper deduplicates children by id, skips NULL-id rows and
// preserves the row order of first appearance.
type rowGrouper[P comparable, C any] struct {
	seen     map[P]map[uuid.UUID]struct{}
	children map[P][]*C
}

func newRowGrouper[P comparable, C any]() *rowGrouper[P, C] {
	return &rowGrouper[P, C]{
		seen:     make(map[P]map[uuid.UUID]struct{}),
		children: make(map[P][]*C),
	}
}

// Add records one flat row. A nil childID means the join produced no child
// for this row and the row is dropped; build is only invoked for rows that
// survive deduplication.
func (g *rowGrouper[P, C]) Add(parent P, childID *uuid.UUID, build func() *C) {
	if childID == nil || *childID == uuid.Nil {
		return
	}

	ids, ok := g.seen[parent]
	if !ok {
		ids = make(map[uuid.UUID]struct{})
		g.seen[parent] = ids
	}
	if _, dup := ids[*childID]; dup {
		return
	}
	ids[*childID] = struct{}{}

	g.children[parent] = append(g.children[parent], build())
}

// Children returns the deduplicated child list for a parent, or an empty
// slice when the parent had none. Parents never get a nil slice so callers
// can range without nil checks.
func (g *rowGrouper[P, C]) Children(parent P) []*C {
	if list, ok := g.children[parent]; ok {
		return list
	}

	return []*C{}
}
