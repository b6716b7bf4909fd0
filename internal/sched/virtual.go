package sched

import (
	"container/heap"
	"time"
)

// Virtual is a deterministic Scheduler driven by Advance. Callbacks run on the
// caller's goroutine in due-time order; ties fire in scheduling order.
type Virtual struct {
	now    time.Time
	frame  time.Duration
	seq    uint64
	timers timerHeap
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time, frame time.Duration) *Virtual {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Virtual{now: start, frame: frame}
}

// Every implements Scheduler.
func (v *Virtual) Every(d time.Duration, fn func()) Cancel {
	if d <= 0 {
		panic("sched: non-positive interval for Every")
	}
	return v.add(d, d, fn)
}

// NextFrame implements Scheduler.
func (v *Virtual) NextFrame(fn func()) Cancel {
	return v.add(v.frame, 0, fn)
}

// Now implements Scheduler.
func (v *Virtual) Now() time.Time {
	return v.now
}

// Pending reports how many callbacks are still scheduled.
func (v *Virtual) Pending() int {
	return len(v.timers)
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now.Add(d)
	for len(v.timers) > 0 {
		next := v.timers[0]
		if next.at.After(target) {
			break
		}
		heap.Pop(&v.timers)
		v.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
			v.seq++
			next.seq = v.seq
			heap.Push(&v.timers, next)
		}
		next.fn()
	}
	v.now = target
}

func (v *Virtual) add(after, every time.Duration, fn func()) Cancel {
	v.seq++
	t := &vtimer{at: v.now.Add(after), every: every, fn: fn, seq: v.seq, index: -1}
	heap.Push(&v.timers, t)
	return func() {
		if t.index >= 0 {
			heap.Remove(&v.timers, t.index)
		}
	}
}

type vtimer struct {
	at    time.Time
	every time.Duration
	fn    func()
	seq   uint64
	index int
}

type timerHeap []*vtimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*vtimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
