package rpmts

// Iterator is a typed forward cursor over a TransactionSet's elements. It
// holds a strong reference to the set for its lifetime (invariant 4), so a
// set outlives every Iterator created against it until Free is called.
//
// The iterator is deliberately forward-only. Reverse traversal, where a
// caller needs it (erase ordering runs opposite to install ordering), is
// done by indexing Element(ix) in reverse rather than by a second iterator
// kind — see §4.5.
type Iterator struct {
	ts *TransactionSet
	oc int
}

// Iterate returns a new Iterator over ts, incrementing its reference count.
func (ts *TransactionSet) Iterate() *Iterator {
	if ts == nil {
		return nil
	}
	ts.link()
	return &Iterator{ts: ts}
}

// Next returns the next element whose type intersects types, or the next
// element unconditionally when types is ElementTypeAny. It returns nil once
// the current snapshot of order is exhausted, never skipping or repeating
// an element (invariant 8).
func (it *Iterator) Next(types ElementType) *Element {
	if it == nil || it.ts == nil {
		return nil
	}

	for it.oc < it.ts.members.NElements() {
		te := it.ts.members.Element(it.oc)
		it.oc++
		if types == ElementTypeAny || te.Type&types != 0 {
			return te
		}
	}
	return nil
}

// Free decrements the owning set's reference count, possibly destroying it.
func (it *Iterator) Free() {
	if it == nil || it.ts == nil {
		return
	}
	it.ts.free()
	it.ts = nil
}
