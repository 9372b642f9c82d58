package ecs

import (
	"strings"
	"testing"
)

func names(s *Store[item]) string {
	var out []string
	s.Each(func(_ EntityID, it *item) { out = append(out, it.name) })
	return strings.Join(out, ",")
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	s := NewStore[item]()
	a, b, c := NewEntityID(3, 0), NewEntityID(1, 0), NewEntityID(7, 0)
	s.Set(a, &item{name: "a"})
	s.Set(b, &item{name: "b"})
	s.Set(c, &item{name: "c"})

	s.Remove(b)
	if got := names(s); got != "a,c" {
		t.Fatalf("order after remove = %s, want a,c", got)
	}
	s.Set(b, &item{name: "b2"})
	s.Set(a, &item{name: "a2"}) // replace keeps position
	if got := names(s); got != "a2,c,b2" {
		t.Fatalf("order = %s, want a2,c,b2", got)
	}
	if it, ok := s.Get(c); !ok || it.name != "c" {
		t.Fatal("lookup broken after reindexing")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestStoreRejectsStaleGeneration(t *testing.T) {
	s := NewStore[item]()
	old, cur := NewEntityID(2, 0), NewEntityID(2, 1)
	s.Set(cur, &item{name: "cur"})

	if s.Has(old) {
		t.Fatal("stale id resolved")
	}
	s.Remove(old)
	if !s.Has(cur) {
		t.Fatal("removing a stale id dropped the live item")
	}
	if _, ok := s.Get(NewEntityID(99, 0)); ok {
		t.Fatal("unknown slot resolved")
	}
}
