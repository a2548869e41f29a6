package rpmts

import "testing"

func TestMembersAddAndEmpty(t *testing.T) {
	m := newMembers()

	var added, deleted int
	change := func(event ChangeEvent, te, other *Element, data interface{}) int {
		switch event {
		case EventAdd:
			added++
		case EventDelete:
			deleted++
		}
		return 0
	}

	m.Add(&Element{Type: ElementInstall, Name: "foo"}, change, nil)
	m.Add(&Element{Type: ElementErase, Name: "bar", DBOffset: 7}, change, nil)

	if m.NElements() != 2 {
		t.Fatalf("NElements() = %d, want 2", m.NElements())
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if !m.IsRemoved(7) {
		t.Errorf("expected offset 7 to be marked removed")
	}
	if got := m.AddedByName("foo"); len(got) != 1 {
		t.Errorf("AddedByName(foo) = %v, want 1 element", got)
	}

	pool := m.Pool()
	pool.Intern("sentinel")

	m.Empty(change, nil)

	if m.NElements() != 0 {
		t.Errorf("NElements() after Empty = %d, want 0", m.NElements())
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if m.Pool() != pool {
		t.Errorf("Empty must not replace the string pool")
	}
	if pool.String(pool.Intern("sentinel")) != "sentinel" {
		t.Errorf("pool contents did not survive Empty")
	}
}

func TestElementOutOfRange(t *testing.T) {
	m := newMembers()
	if e := m.Element(0); e != nil {
		t.Errorf("Element(0) on empty Members = %v, want nil", e)
	}
	m.Add(&Element{Type: ElementInstall, Name: "foo"}, nil, nil)
	if e := m.Element(1); e != nil {
		t.Errorf("Element(1) out of range = %v, want nil", e)
	}
}
