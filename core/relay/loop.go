package relay

import "sync"

// taskLoop serializes work onto the coordinator goroutine. Post may be called
// from anywhere, tasks run one after another in post order.
type taskLoop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func newTaskLoop() *taskLoop {
	return &taskLoop{wake: make(chan struct{}, 1)}
}

func (l *taskLoop) Post(task func()) {
	l.mu.Lock()
	l.pending = append(l.pending, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every task posted so far, including tasks posted by the
// tasks themselves, and returns how many ran.
func (l *taskLoop) RunPending() int {
	ran := 0
	for {
		l.mu.Lock()
		tasks := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			return ran
		}
		for _, task := range tasks {
			task()
			ran++
		}
	}
}
