package utxo

import "iter"

// Source is a forward-only, single-pass sequence of output references.
//
// A Source may be created on one goroutine and drained on another, but Next
// must never be called from two goroutines at once. Ownership moves with the
// value: whoever is handed a Source is its only consumer.
type Source interface {
	// Next returns the next reference, or false once the source is exhausted.
	Next() (*Entry, bool)
}

// Iterator lazily walks a Context in amount order. Each Next reads the entry
// at a positional cursor under the context's read lock; no entry is yielded
// twice. Entries inserted after the cursor are observed. An insert before the
// cursor shifts an already yielded entry back under it, which the seen-set
// skips. A removal before the cursor shifts the next unseen entry behind it,
// so that entry is never yielded by this iterator.
type Iterator struct {
	ctx    *Context
	cursor int
	seen   map[string]struct{}
}

// Compile-time interface check.
var _ Source = (*Iterator)(nil)

// NewIterator returns a fresh iterator over ctx.
func NewIterator(ctx *Context) *Iterator {
	return &Iterator{ctx: ctx, seen: make(map[string]struct{})}
}

// Next implements Source.
func (it *Iterator) Next() (*Entry, bool) {
	if it.ctx == nil {
		return nil, false
	}
	for {
		e, ok := it.ctx.At(it.cursor)
		if !ok {
			it.ctx = nil
			it.seen = nil
			return nil, false
		}
		it.cursor++
		key := string(e.Outpoint.Key())
		if _, dup := it.seen[key]; dup {
			continue
		}
		it.seen[key] = struct{}{}
		return e, true
	}
}

// SliceSource yields a fixed list of references in order.
type SliceSource struct {
	entries []*Entry
	pos     int
}

// Compile-time interface check.
var _ Source = (*SliceSource)(nil)

// FromEntries builds a Source over entries. The slice is copied; nil
// elements are skipped.
func FromEntries(entries ...*Entry) *SliceSource {
	s := &SliceSource{entries: make([]*Entry, 0, len(entries))}
	for _, e := range entries {
		if e != nil {
			s.entries = append(s.entries, e)
		}
	}
	return s
}

// Next implements Source.
func (s *SliceSource) Next() (*Entry, bool) {
	if s.pos >= len(s.entries) {
		return nil, false
	}
	e := s.entries[s.pos]
	s.entries[s.pos] = nil
	s.pos++
	return e, true
}

// Seq adapts a Source for range-over-func. Ranging consumes the source.
func Seq(src Source) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		if src == nil {
			return
		}
		for {
			e, ok := src.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Collect drains src into a slice.
func Collect(src Source) []*Entry {
	var out []*Entry
	for e := range Seq(src) {
		out = append(out, e)
	}
	return out
}
