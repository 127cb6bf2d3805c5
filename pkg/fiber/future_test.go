package fiber

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestReadyFuture(t *testing.T) {
	f := Ready(42)
	if !f.IsReady() {
		t.Fatalf("expected ready future")
	}
	v, err := f.Get()
	if err != nil || v != 42 {
		t.Fatalf("Get() = %v, %v, want 42, nil", v, err)
	}
}

func TestPromiseDeliversAcrossGoroutines(t *testing.T) {
	p := NewPromise[int]()
	done := make(chan struct{})
	go func() {
		v, err := p.Future().Get()
		if err != nil || v != 7 {
			t.Errorf("Get() = %v, %v, want 7, nil", v, err)
		}
		close(done)
	}()
	p.SetValue(7)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for future")
	}
}

func TestDeferredRunsAtMostOnce(t *testing.T) {
	var runs int32
	f := Deferred(func() (int, error) {
		atomic.AddInt32(&runs, 1)
		return 9, nil
	})
	for i := 0; i < 8; i++ {
		go f.Get()
	}
	v, err := f.Get()
	if err != nil || v != 9 {
		t.Fatalf("Get() = %v, %v, want 9, nil", v, err)
	}
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("deferred task ran %d times, want 1", got)
	}
}

func TestThenPropagatesError(t *testing.T) {
	f := Failed[int](errors.New("boom"))
	g := Then(f, func(v int, err error) (string, error) {
		if err != nil {
			return "", err
		}
		return "ok", nil
	})
	_, err := g.Get()
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestWaitRespectsContext(t *testing.T) {
	p := NewPromise[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Future().Wait(ctx)
	if err == nil {
		t.Fatalf("expected context deadline error")
	}
}

func TestPoolRunsAllTasks(t *testing.T) {
	pool := NewPool(4)
	var count int32
	for i := 0; i < 50; i++ {
		pool.Spawn(func() { atomic.AddInt32(&count, 1) })
	}
	pool.Shutdown()
	if got := atomic.LoadInt32(&count); got != 50 {
		t.Fatalf("count = %d, want 50", got)
	}
}
