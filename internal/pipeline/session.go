package pipeline

import "sync"

// Session is one run of the pipeline over a page.
type Session struct {
	mu      sync.Mutex
	initial []Record
	records []Record
	updates chan Record
	done    chan struct{}
}

func newSession(n int) *Session {
	return &Session{
		records: make([]Record, n),
		updates: make(chan Record, n),
		done:    make(chan struct{}),
	}
}

// Initial returns the first-pass records in page order.
func (s *Session) Initial() []Record {
	return s.initial
}

// Updates delivers refined records as expansions complete. It is closed
// when no more will follow.
func (s *Session) Updates() <-chan Record {
	return s.updates
}

// Done is closed once every expansion has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until every expansion has finished and returns the final
// records in page order.
func (s *Session) Wait() []Record {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func (s *Session) set(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Index] = rec
}

func (s *Session) finish() {
	close(s.updates)
	close(s.done)
}
