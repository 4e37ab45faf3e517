package implementation

import (
	"sync"
)

// UILoop runs posted functions one at a time, in order, on its own
// goroutine. It implements widget.Dispatcher.
type UILoop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func NewUILoop() *UILoop {
	loop := &UILoop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go loop.run()
	return loop
}

// InvokeLater implements widget.Dispatcher. Functions posted after Stop
// are dropped.
func (loop *UILoop) InvokeLater(f func()) {
	if loop.stopped() {
		return
	}
	select {
	case <-loop.done:
	case loop.queue <- f:
	}
}

// InvokeAndWait posts f and blocks until it has run. It returns false if
// the loop stopped first.
func (loop *UILoop) InvokeAndWait(f func()) bool {
	ran := make(chan struct{})
	loop.InvokeLater(func() {
		defer close(ran)
		f()
	})
	select {
	case <-ran:
		return true
	case <-loop.done:
		return false
	}
}

func (loop *UILoop) Stop() {
	loop.stopOnce.Do(func() {
		close(loop.done)
	})
}

func (loop *UILoop) stopped() bool {
	select {
	case <-loop.done:
		return true
	default:
		return false
	}
}

func (loop *UILoop) run() {
	for {
		select {
		case <-loop.done:
			return
		case f := <-loop.queue:
			if loop.stopped() {
				return
			}
			loop.invoke(f)
		}
	}
}

func (loop *UILoop) invoke(f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("ui loop: %v", r)
		}
	}()
	f()
}
