package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/minierp/console-gateway/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	appendTimeout  = 5 * time.Second
)

// Recorder persists audit events off the request path. Events flow through
// a buffered channel into a fixed set of workers; when the buffer is full
// the event is dropped rather than stalling a login or a redirect.
type Recorder struct {
	inbox chan ports.AuditEvent
	repo  ports.AuditRepository
	log   zerolog.Logger
}

// NewRecorder creates a Recorder backed by the given repository.
func NewRecorder(repo ports.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{
		inbox: make(chan ports.AuditEvent, channelBuffer),
		repo:  repo,
		log:   log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i := 0; i < defaultWorkers; i++ {
		go r.runWorker(ctx, i)
	}
}

// Record enqueues an audit event. Never blocks.
func (r *Recorder) Record(event ports.AuditEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case r.inbox <- event:
	default:
		r.log.Warn().Str("kind", event.Kind).Msg("audit buffer full, event dropped")
	}
}

func (r *Recorder) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.inbox:
			appendCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
			if err := r.repo.Append(appendCtx, event); err != nil {
				r.log.Error().Err(err).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("audit append failed")
			}
			cancel()
		}
	}
}
