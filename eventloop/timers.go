package eventloop

import (
	"container/heap"
	"time"
)

type timer struct {
	when  time.Time
	seq   uint64
	task  *Task
	token uint64
}

// timerHeap orders timers by deadline, then by creation.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

func (h *timerHeap) add(t *timer) { heap.Push(h, t) }

func (h timerHeap) next() (*timer, bool) {
	if len(h) == 0 {
		return nil, false
	}
	return h[0], true
}

// popDue removes and returns every timer due at or before now.
func (h *timerHeap) popDue(now time.Time) []*timer {
	var due []*timer
	for h.Len() > 0 && !(*h)[0].when.After(now) {
		due = append(due, heap.Pop(h).(*timer))
	}
	return due
}
