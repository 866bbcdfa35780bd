package layers

import "context"

// LoadStatus is the state of an image load.
type LoadStatus int

const (
	LoadPending LoadStatus = iota
	LoadComplete
	LoadFailed
)

// String implements fmt.Stringer.
func (s LoadStatus) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadComplete:
		return "complete"
	case LoadFailed:
		return "failed"
	}
	return "unknown"
}

// Load tracks one asynchronous image decode started by Layer.LoadImage.
type Load struct {
	done chan struct{}

	// Written once before done is closed.
	status LoadStatus
	err    error
}

func newLoad() *Load {
	return &Load{done: make(chan struct{})}
}

// finish records the outcome and releases waiters.
func (ld *Load) finish(err error) {
	ld.status = LoadComplete
	if err != nil {
		ld.status = LoadFailed
		ld.err = err
	}
	close(ld.done)
}

// Done returns a channel closed when the load has finished.
func (ld *Load) Done() <-chan struct{} {
	return ld.done
}

// Status reports the load state without blocking.
func (ld *Load) Status() LoadStatus {
	select {
	case <-ld.done:
		return ld.status
	default:
		return LoadPending
	}
}

// Err returns the decode or apply error of a failed load, and nil while
// the load is pending or after it completed.
func (ld *Load) Err() error {
	select {
	case <-ld.done:
		return ld.err
	default:
		return nil
	}
}

// Wait blocks until the load finishes or ctx is done, and returns the
// load error or the context error.
func (ld *Load) Wait(ctx context.Context) error {
	select {
	case <-ld.done:
		return ld.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
