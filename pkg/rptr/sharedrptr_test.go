package rptr

import "testing"

func TestCloneReleaseDestructsOnce(t *testing.T) {
	rts := NewLoopbackJob(1)
	rt := rts[0]
	destructed := 0
	r := MakeSharedRptr(rt, 42)
	rt.mu.Lock()
	rt.owners[r.Addr()].destroy = func() { destructed++ }
	rt.mu.Unlock()

	r2 := r.Clone()
	if r.Get() != 42 || r2.Get() != 42 {
		t.Fatalf("expected both handles to read 42")
	}
	r.Release()
	if destructed != 0 {
		t.Fatalf("destructed too early: %d", destructed)
	}
	r2.Release()
	if destructed != 1 {
		t.Fatalf("expected exactly one destruction, got %d", destructed)
	}
}

func TestDirectSendToOwnerProcess(t *testing.T) {
	rts := NewLoopbackJob(2)
	destructed := 0
	r0 := MakeSharedRptr(rts[0], "hello")
	rts[0].mu.Lock()
	rts[0].owners[r0.Addr()].destroy = func() { destructed++ }
	rts[0].mu.Unlock()

	share := r0.Clone()
	wire := share.Serialize()
	r1 := Deserialize[string](rts[0], wire)
	if !r1.IsOwner() || r1.OwnerRank() != 0 {
		t.Fatalf("sending to the owning process itself should stay an owner handle")
	}
	r0.Release()
	if destructed != 0 {
		t.Fatalf("destructed too early")
	}
	r1.Release()
	if destructed != 1 {
		t.Fatalf("expected one destruction, got %d", destructed)
	}
}

// TestTwoProcessMigration exercises the refcount handover across a
// genuine 3-step relay: owner (rank 0) builds the object, hands a
// share to rank 1, rank 1 sends a copy of its share back to rank 0 (the
// "shortcut" branch, since the relay lands back on the owner) and keeps
// its own share until it releases it.
func TestTwoProcessMigration(t *testing.T) {
	rts := NewLoopbackJob(2)
	destructed := 0
	r0 := MakeSharedRptr(rts[0], 7)
	rts[0].mu.Lock()
	rts[0].owners[r0.Addr()].destroy = func() { destructed++ }
	rts[0].mu.Unlock()

	share := r0.Clone()
	wire0 := share.Serialize()
	r1 := Deserialize[int](rts[1], wire0)
	if r1.IsOwner() {
		t.Fatalf("rank 1 should hold a non-owner handle")
	}

	wire1 := r1.Serialize()
	r2 := Deserialize[int](rts[0], wire1)
	if !r2.IsOwner() || r2.OwnerRank() != 0 {
		t.Fatalf("relaying back to the owner should yield an owner handle")
	}

	r2.Release()
	r0.Release()
	if destructed != 0 {
		t.Fatalf("destructed too early, remaining share on rank 1")
	}
	r1.Release()
	if destructed != 1 {
		t.Fatalf("expected exactly one destruction after all handles released, got %d", destructed)
	}
}

// TestThreeProcessRelay exercises the genuine relay branch: rank 0
// owns the object, hands a share to rank 1, rank 1 relays a copy of
// that share on to rank 2 without ever being the owner.
func TestThreeProcessRelay(t *testing.T) {
	rts := NewLoopbackJob(3)
	destructed := 0
	r0 := MakeSharedRptr(rts[0], "payload")
	rts[0].mu.Lock()
	rts[0].owners[r0.Addr()].destroy = func() { destructed++ }
	rts[0].mu.Unlock()

	share := r0.Clone()
	wire0 := share.Serialize()
	r1 := Deserialize[string](rts[1], wire0)

	wire1 := r1.Serialize()
	r2 := Deserialize[string](rts[2], wire1)
	if r2.IsOwner() {
		t.Fatalf("rank 2 should hold a non-owner handle, owner stays rank 0")
	}
	if r2.OwnerRank() != 0 {
		t.Fatalf("expected owner rank 0, got %d", r2.OwnerRank())
	}

	r0.Release()
	r1.Release()
	if destructed != 0 {
		t.Fatalf("destructed too early, rank 2 still holds a share")
	}
	r2.Release()
	if destructed != 1 {
		t.Fatalf("expected exactly one destruction, got %d", destructed)
	}
}

