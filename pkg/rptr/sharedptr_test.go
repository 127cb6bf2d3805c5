package rptr

import "testing"

func TestSharedPtrDestructsOnLastRelease(t *testing.T) {
	destructed := 0
	p := NewSharedPtrWithDestructor(10, func(int) { destructed++ })
	q := p.Clone()
	if p.Size() != 1 || q.Size() != 1 {
		t.Fatalf("expected size 1 for both handles")
	}
	p.Release()
	if destructed != 0 {
		t.Fatalf("destructed too early")
	}
	q.Release()
	if destructed != 1 {
		t.Fatalf("expected exactly one destruction, got %d", destructed)
	}
}

func TestFmapSharedPtr(t *testing.T) {
	p := NewSharedPtr(3)
	q := FmapSharedPtr(func(x int) string {
		return string(rune('a' + x))
	}, p)
	if q.Get() != "d" {
		t.Fatalf("expected %q, got %q", "d", q.Get())
	}
}
