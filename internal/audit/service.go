package audit

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/telemetry"
)

// Service queues audit entries and writes them to the configured Sink from a
// background worker, keeping persistence off the evaluation path. A full
// queue drops the entry rather than blocking, and sink failures are logged
// and swallowed: auditing is best-effort and never fails an evaluation.
type Service struct {
	sink   Sink
	clock  Clock
	idgen  IDGenerator
	log    zerolog.Logger
	queue  chan Entry
	stopCh chan struct{}
	closed int32 // atomic flag to prevent double-close
}

// NewService creates an audit service and starts its background worker.
func NewService(sink Sink, clock Clock, idgen IDGenerator, log zerolog.Logger, queueSize int) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	s := &Service{
		sink:   sink,
		clock:  clock,
		idgen:  idgen,
		log:    log,
		queue:  make(chan Entry, queueSize),
		stopCh: make(chan struct{}),
	}

	go s.worker()

	return s
}

// worker processes audit entries in the background.
func (s *Service) worker() {
	for {
		select {
		case entry := <-s.queue:
			s.write(entry)
		case <-s.stopCh:
			// Drain remaining entries before stopping.
			for {
				select {
				case entry := <-s.queue:
					s.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("org", entry.OrgID).Msg("audit write failed")
	}
}

// Record snapshots the expense and result as JSON and queues the entry.
// The entry is dropped when the queue is full.
func (s *Service) Record(orgID string, expense, result any) {
	expenseJSON, err := json.Marshal(expense)
	if err != nil {
		s.log.Warn().Err(err).Str("org", orgID).Msg("audit expense snapshot failed")
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Str("org", orgID).Msg("audit result snapshot failed")
		return
	}

	entry := Entry{
		ID:        s.idgen.Generate(),
		OrgID:     orgID,
		Expense:   expenseJSON,
		Result:    resultJSON,
		CreatedAt: s.clock.Now(),
	}

	select {
	case s.queue <- entry:
	default:
		telemetry.AuditDropped.Inc()
		s.log.Warn().Str("org", orgID).Msg("audit queue full, dropping entry")
	}
}

// Recent reads back the newest entries for an org from the sink.
func (s *Service) Recent(ctx context.Context, orgID string, limit int) ([]Entry, error) {
	return s.sink.Recent(ctx, orgID, limit)
}

// Close signals the worker to stop and drain any queued entries.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Service) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	close(s.stopCh)
	return nil
}
