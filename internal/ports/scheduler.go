package ports

import "time"

// Scheduler abstracts delayed execution so the engine's autonomous next-round
// timer can be driven deterministically in tests.
type Scheduler interface {
	// After runs fn once on its own goroutine after the delay elapses. The
	// returned Timer cancels the callback if it has not fired yet.
	After(d time.Duration, fn func()) Timer
}

// Timer is a handle to one scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still
	// pending; calling Stop more than once is safe.
	Stop() bool
}

// SystemScheduler schedules on the process clock via time.AfterFunc.
type SystemScheduler struct{}

// After implements Scheduler.
func (SystemScheduler) After(d time.Duration, fn func()) Timer {
	return systemTimer{time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool { return st.t.Stop() }
