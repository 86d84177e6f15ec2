package transcribe

import "context"

// slots is a counting semaphore bounding concurrent whisper
// invocations.
type slots struct {
	ch chan struct{}
}

func newSlots(capacity int) *slots {
	if capacity <= 0 {
		capacity = 1
	}
	return &slots{ch: make(chan struct{}, capacity)}
}

func (s *slots) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slots) release() {
	<-s.ch
}
