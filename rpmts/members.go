package rpmts

// ElementType classifies a transaction element as an install or an erase.
// Iterator.Next filters by a mask of these bits.
type ElementType uint32

const (
	ElementInstall ElementType = 1 << iota
	ElementErase
)

const ElementTypeAny ElementType = 0

// ChangeEvent identifies why NotifyChange was invoked.
type ChangeEvent int

const (
	EventAdd ChangeEvent = iota
	EventDelete
)

// ChangeFunc is the membership-change callback: invoked on Add and, during
// Empty, once per removed element with EventDelete.
type ChangeFunc func(event ChangeEvent, te, other *Element, data interface{}) int

// Element is a single install or erase intent with an associated package
// header. The header and dependency-set fields are opaque to this core —
// the file-state machine, header parser and dependency solver own their
// meaning; the transaction set only stores and iterates them.
type Element struct {
	Type ElementType

	// Key is the caller-supplied per-element token (fnpyKey) surfaced to
	// the notify callback.
	Key interface{}

	// Header is the opaque package header reference this element carries.
	Header interface{}

	// DBOffset identifies the installed header this element erases. Zero
	// for install elements.
	DBOffset int64

	// NEVRA fields; Name keys the added-packages lookup. Populated by the
	// (external) solver/ordering step.
	Name, Epoch, Version, Release, Arch string
}

// addedIndex is a minimal stand-in for rpmal: a by-name lookup over the
// install elements currently in the set, used by the external dependency
// solver to find a package that would satisfy an unresolved requirement.
type addedIndex map[string][]*Element

// Members is carved out of TransactionSet so it can be reset ("emptied")
// without destroying the set: the string pool it also owns must survive
// that reset (invariant 5).
type Members struct {
	order           []*Element
	removedPackages map[int64]struct{}
	addedPackages   addedIndex
	rpmlib          []string // cached dependency set of built-in capabilities
	pool            *stringPool
}

func newMembers() *Members {
	return &Members{
		removedPackages: make(map[int64]struct{}),
	}
}

// Pool returns the set's string pool, creating it on first access.
func (m *Members) Pool() *stringPool {
	if m.pool == nil {
		m.pool = newStringPool()
	}
	return m.pool
}

// NElements returns the number of elements currently in order.
func (m *Members) NElements() int {
	return len(m.order)
}

// Element returns the element at ix, or nil if ix is out of range.
func (m *Members) Element(ix int) *Element {
	if ix < 0 || ix >= len(m.order) {
		return nil
	}
	return m.order[ix]
}

// Add appends te to order, indexes it if it is an install element, and
// fires the change callback with EventAdd.
func (m *Members) Add(te *Element, change ChangeFunc, data interface{}) {
	m.order = append(m.order, te)

	if te.Type == ElementInstall {
		if m.addedPackages == nil {
			m.addedPackages = make(addedIndex)
		}
		m.addedPackages[te.Name] = append(m.addedPackages[te.Name], te)
	} else if te.Type == ElementErase && te.DBOffset != 0 {
		m.removedPackages[te.DBOffset] = struct{}{}
	}

	if change != nil {
		change(EventAdd, te, nil, data)
	}
}

// AddedByName returns the install elements added under the given package
// name, for the external solver to resolve unmet requirements against.
func (m *Members) AddedByName(name string) []*Element {
	return m.addedPackages[name]
}

// IsRemoved reports whether the installed header at offset is already
// marked for erase in this transaction.
func (m *Members) IsRemoved(offset int64) bool {
	_, ok := m.removedPackages[offset]
	return ok
}

// Clean frees addedPackages and the cached rpmlib capability set without
// touching order. Dependency-check problems are held by the TransactionSet
// and cleared by its Clean and Empty. rpmtsEmpty calls the equivalent of
// this before clearing order; Empty below does the same.
func (m *Members) Clean() {
	m.addedPackages = nil
	m.rpmlib = nil
}

// Empty emits a DEL change event for every element, clears order and
// removedPackages, and frees addedPackages/rpmlib — but never the string
// pool, which may still be referenced by interned names elsewhere.
func (m *Members) Empty(change ChangeFunc, data interface{}) {
	m.Clean()

	for _, te := range m.order {
		if change != nil {
			change(EventDelete, te, nil, data)
		}
	}

	m.order = nil
	m.removedPackages = make(map[int64]struct{})
}
