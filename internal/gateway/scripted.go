package gateway

import (
	"context"
	"sync"
)

// Scripted is a Gateway that replays queued results. It backs the engine and
// front-end tests.
type Scripted struct {
	mu      sync.Mutex
	queue   []scriptedStep
	status  Status
	Started chan struct{}
	// Release, when non-nil, blocks each turn until it receives. Tests use it
	// to hold a turn in flight.
	Release chan struct{}

	// Requests records every TurnRequest seen, newest last.
	Requests []TurnRequest
}

type scriptedStep struct {
	result TurnResult
	err    error
}

func NewScripted() *Scripted {
	return &Scripted{status: StatusOK}
}

// Enqueue adds a successful turn to the script.
func (s *Scripted) Enqueue(result TurnResult) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, scriptedStep{result: result})
	return s
}

// EnqueueError adds a failing turn to the script.
func (s *Scripted) EnqueueError(err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, scriptedStep{err: err})
	return s
}

// SetStatus sets the reachability-probe answer.
func (s *Scripted) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Scripted) Turn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	var step scriptedStep
	if len(s.queue) > 0 {
		step = s.queue[0]
		s.queue = s.queue[1:]
	} else {
		step = scriptedStep{err: ErrUnavailable}
	}
	started := s.Started
	release := s.Release
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return TurnResult{}, ctx.Err()
		}
	}
	return step.result, step.err
}

func (s *Scripted) CheckReachability(_ context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
