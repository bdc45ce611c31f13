package engine

import "context"

// RunHandle tracks a run executing on a background goroutine. The run
// itself stays strictly sequential; the handle only moves the whole
// batch off the caller's goroutine.
type RunHandle struct {
	done chan struct{}
	res  *Result
	err  error
}

// Done returns a channel closed when the run finishes.
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its outcome.
func (h *RunHandle) Wait() (*Result, error) {
	<-h.done
	return h.res, h.err
}

// Start launches DoActions on a background goroutine and returns a
// handle that resolves when the run completes.
func (r *Runner) Start(ctx context.Context) *RunHandle {
	h := &RunHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.res, h.err = r.DoActions(ctx)
	}()
	return h
}
