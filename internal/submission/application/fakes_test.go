package application

import (
	"context"
	"strconv"
	"sync"
)

// memoryLogStore is an in-memory LogStore that honours write conditions.
type memoryLogStore struct {
	mu       sync.Mutex
	body     []byte
	exists   bool
	version  int
	readErr  error
	writeErr error
	reads    int
	writes   int
	// beforeWrite runs once per write before the condition is checked.
	beforeWrite func(s *memoryLogStore)
}

func newMemoryLogStore(initial string) *memoryLogStore {
	s := &memoryLogStore{}
	if initial != "" {
		s.body = []byte(initial)
		s.exists = true
		s.version = 1
	}
	return s
}

func (s *memoryLogStore) Read(context.Context) (LogContents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return LogContents{}, s.readErr
	}
	if !s.exists {
		return LogContents{}, nil
	}
	return LogContents{
		Body:    append([]byte(nil), s.body...),
		Version: strconv.Itoa(s.version),
		Exists:  true,
	}, nil
}

func (s *memoryLogStore) Write(_ context.Context, body []byte, cond *WriteCondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeWrite != nil {
		hook := s.beforeWrite
		s.beforeWrite = nil
		hook(s)
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	if cond != nil {
		if cond.IfAbsent && s.exists {
			return ErrWriteConflict
		}
		if cond.IfMatch != "" && (!s.exists || cond.IfMatch != strconv.Itoa(s.version)) {
			return ErrWriteConflict
		}
	}
	s.writes++
	s.body = append([]byte(nil), body...)
	s.exists = true
	s.version++
	return nil
}

func (s *memoryLogStore) content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.body)
}

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []Notification
}

func (n *recordingNotifier) Send(_ context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type recordingFailureRepository struct {
	mu       sync.Mutex
	err      error
	failures []FailedNotification
}

func (r *recordingFailureRepository) Save(_ context.Context, failure FailedNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure)
	return r.err
}
