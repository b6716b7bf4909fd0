package sched

import (
	"context"
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestVirtualEveryFiresInOrder(t *testing.T) {
	v := NewVirtual(epoch, 0)

	var got []string
	v.Every(1500*time.Millisecond, func() { got = append(got, "sample") })
	v.Every(1000*time.Millisecond, func() { got = append(got, "tick") })

	v.Advance(3 * time.Second)

	want := []string{"tick", "sample", "tick", "sample", "tick"}
	if len(got) != len(want) {
		t.Fatalf("fired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !v.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v, want %v", v.Now(), epoch.Add(3*time.Second))
	}
}

func TestVirtualCancel(t *testing.T) {
	v := NewVirtual(epoch, 0)

	count := 0
	cancel := v.Every(time.Second, func() { count++ })
	v.Advance(2 * time.Second)
	cancel()
	cancel()
	v.Advance(5 * time.Second)

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if v.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", v.Pending())
	}
}

func TestVirtualCancelFromCallback(t *testing.T) {
	v := NewVirtual(epoch, 0)

	count := 0
	var cancel Cancel
	cancel = v.Every(time.Second, func() {
		count++
		if count == 3 {
			cancel()
		}
	})
	v.Advance(10 * time.Second)

	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestVirtualNextFrameIsOneShot(t *testing.T) {
	v := NewVirtual(epoch, 16*time.Millisecond)

	frames := 0
	var draw func()
	draw = func() {
		frames++
		v.NextFrame(draw)
	}
	v.NextFrame(draw)
	v.Advance(160 * time.Millisecond)

	if frames != 10 {
		t.Errorf("frames = %d, want 10", frames)
	}
	if v.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 rescheduled frame", v.Pending())
	}
}

func TestLoopDo(t *testing.T) {
	l := NewLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	sentinel := errors.New("boom")
	if err := l.Do(ctx, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("Do() = %v, want %v", err, sentinel)
	}
}

func TestLoopEveryRunsOnLoop(t *testing.T) {
	l := NewLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 8)
	var stop Cancel
	err := l.Do(ctx, func() error {
		stop = l.Every(5*time.Millisecond, func() { fired <- struct{}{} })
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Every callback never fired")
	}
	_ = l.Do(ctx, func() error { stop(); return nil })
}

func TestLoopDoAfterStop(t *testing.T) {
	l := NewLoop(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = l.Run(ctx)

	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do() after stop = %v, want ErrStopped", err)
	}
}
