// Package session serves searches one at a time on a single worker, the way
// a UI event loop would, and drops results of superseded searches.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("session not started")
	ErrClosed     = errors.New("session closed")
)

type Searcher interface {
	Search(ctx context.Context, city string, progress lookup.ProgressFunc) (*lookup.Report, error)
}

type EventKind int

const (
	EventProgress EventKind = iota
	EventResult
)

// Event is published on Results. Progress events carry Stage (and Location
// once resolved); result events carry Report or Err.
type Event struct {
	Kind       EventKind
	Generation uint64
	SearchID   string
	City       string
	Stage      lookup.Stage
	Location   *geocoding.Location
	Report     *lookup.Report
	Err        error
}

type request struct {
	id         string
	generation uint64
	city       string
	ctx        context.Context
	cancel     context.CancelFunc
}

type Session struct {
	searcher Searcher
	logger   *zap.Logger

	queue   chan *request
	results chan Event

	mu         sync.Mutex
	ctx        context.Context
	stop       context.CancelFunc
	generation uint64
	inFlight   context.CancelFunc
	workerWg   sync.WaitGroup
}

func New(searcher Searcher, logger *zap.Logger, queueSize int) *Session {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Session{
		searcher: searcher,
		logger:   logger,
		queue:    make(chan *request, queueSize),
		results:  make(chan Event, queueSize),
	}
}

// Start launches the worker. Results is closed once the worker exits.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return errors.New("session already started")
	}

	s.ctx, s.stop = context.WithCancel(ctx)
	s.workerWg.Add(1)
	go s.run()

	s.logger.Info("Session started")
	return nil
}

func (s *Session) Results() <-chan Event {
	return s.results
}

// Submit queues a search for city and returns its generation. Any earlier
// search still queued or running is superseded: its context is cancelled
// and its remaining events are dropped.
func (s *Session) Submit(city string) (uint64, error) {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return 0, ErrNotStarted
	}
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return 0, ErrClosed
	}

	if s.inFlight != nil {
		s.inFlight()
	}

	s.generation++
	reqCtx, cancel := context.WithCancel(s.ctx)
	req := &request{
		id:         uuid.NewString(),
		generation: s.generation,
		city:       city,
		ctx:        reqCtx,
		cancel:     cancel,
	}
	s.inFlight = cancel
	sessionCtx := s.ctx
	s.mu.Unlock()

	s.logger.Debug("Search submitted",
		zap.String("search_id", req.id),
		zap.Uint64("generation", req.generation),
		zap.String("city", city))

	select {
	case s.queue <- req:
		return req.generation, nil
	case <-sessionCtx.Done():
		cancel()
		return 0, ErrClosed
	}
}

// Stop cancels the running search and waits for the worker to exit.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()

	if stop == nil {
		return ErrNotStarted
	}
	stop()

	done := make(chan struct{})
	go func() {
		s.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Session stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) run() {
	defer s.workerWg.Done()
	defer close(s.results)

	for {
		select {
		case req := <-s.queue:
			s.process(req)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) process(req *request) {
	defer req.cancel()

	log := s.logger.With(
		zap.String("search_id", req.id),
		zap.Uint64("generation", req.generation))

	if !s.isCurrent(req.generation) {
		log.Debug("Skipping superseded search")
		return
	}

	ctx := lookup.ContextWithRequestID(req.ctx, req.id)
	report, err := s.searcher.Search(ctx, req.city, func(stage lookup.Stage, loc *geocoding.Location) {
		s.publish(req, Event{Kind: EventProgress, Stage: stage, Location: loc})
	})

	if !s.publish(req, Event{Kind: EventResult, Report: report, Err: err}) {
		log.Info("Discarding stale search result", zap.String("city", req.city))
	}
}

// publish delivers ev unless req has been superseded. It blocks until the
// consumer reads the event or the session stops.
func (s *Session) publish(req *request, ev Event) bool {
	if !s.isCurrent(req.generation) {
		return false
	}

	ev.Generation = req.generation
	ev.SearchID = req.id
	ev.City = req.city

	select {
	case s.results <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// IsCurrent reports whether ev belongs to the latest submitted search.
// Consumers use it to drop an event that raced with a newer Submit.
func (s *Session) IsCurrent(ev Event) bool {
	return s.isCurrent(ev.Generation)
}

func (s *Session) isCurrent(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation == s.generation
}
