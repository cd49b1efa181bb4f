package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/talentstream/talentstream/internal/telemetry"
)

// Outcome is the terminal classification of one streaming session.
type Outcome int

const (
	// OutcomeCompleted - the job pushed a completed message.
	OutcomeCompleted Outcome = iota
	// OutcomeFailed - the job pushed (or the runner synthesized) an error message.
	OutcomeFailed
	// OutcomeTimedOut - no job message arrived within the idle window.
	OutcomeTimedOut
	// OutcomeDisconnected - the client went away or a write failed.
	OutcomeDisconnected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Config holds the two knobs a streaming session depends on. MaxIdle must be
// strictly greater than HeartbeatInterval so pings appear on the wire before
// an idle job is declared dead.
type Config struct {
	HeartbeatInterval time.Duration
	MaxIdle           time.Duration
}

// DefaultConfig mirrors the service defaults: a ping every 5s, give up after
// 120s of job silence.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 5 * time.Second,
		MaxIdle:           120 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.HeartbeatInterval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}
	if c.MaxIdle <= c.HeartbeatInterval {
		return fmt.Errorf("max idle (%s) must be greater than heartbeat interval (%s)", c.MaxIdle, c.HeartbeatInterval)
	}
	return nil
}

// Multiplexer turns a job into a Server-Sent-Events response body. It races
// the job's queue against a heartbeat ticker, enforces a sliding idle window,
// and tears down all session goroutines on every exit path.
type Multiplexer struct {
	cfg Config
}

// New creates a multiplexer, rejecting configurations where heartbeats could
// not prevent spurious timeouts.
func New(cfg Config) (*Multiplexer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Multiplexer{cfg: cfg}, nil
}

// Serve runs one streaming session: it commits the response as an event
// stream, starts the job with a fresh queue, and relays messages until a
// terminal message, an idle timeout, or a client disconnect.
//
// The idle window slides from the last job message. Heartbeats keep the
// transport alive between messages but do not count as job activity, so a
// job that goes silent for MaxIdle is reported as timed out even while pings
// are still flowing.
//
// Client disconnects are observed proactively through the request context,
// which net/http cancels when the peer goes away; a failed write is treated
// the same way. Whatever the exit path, Serve returns only after the job
// goroutine and the queue pump have both stopped.
func (m *Multiplexer) Serve(w http.ResponseWriter, r *http.Request, job JobFunc) Outcome {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)
	metrics := telemetry.GetMetrics()
	started := time.Now()

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	q := NewQueue()
	handle := Run(ctx, job, q)

	// Pump Pop into a channel so the select below can race it against the
	// ticker and timers. The pump exits when the handle's context dies.
	events := make(chan *Message)
	pumpDone := make(chan struct{})
	pumpCtx, cancelPump := context.WithCancel(ctx)
	go func() {
		defer close(pumpDone)
		for {
			msg, err := q.Pop(pumpCtx)
			if err != nil {
				return
			}
			select {
			case events <- msg:
			case <-pumpCtx.Done():
				return
			}
		}
	}()

	metrics.ActiveStreams.Add(ctx, 1)

	outcome := OutcomeDisconnected
	defer func() {
		handle.Cancel()
		cancelPump()
		<-handle.Done()
		<-pumpDone

		metrics.ActiveStreams.Add(ctx, -1)
		metrics.StreamOutcomes.Add(ctx, 1,
			metric.WithAttributes(attribute.String("outcome", outcome.String())))
		metrics.StreamDuration.Record(ctx, float64(time.Since(started).Milliseconds()))

		log.Info().
			Stringer("outcome", outcome).
			Dur("duration", time.Since(started)).
			Msg("stream session finished")
	}()

	heartbeat := time.NewTicker(m.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	idle := time.NewTimer(m.cfg.MaxIdle)
	defer idle.Stop()

	for {
		select {
		case msg := <-events:
			if err := m.emit(w, flusher, msg); err != nil {
				log.Warn().Err(err).Msg("stream write failed")
				outcome = OutcomeDisconnected
				return outcome
			}
			metrics.EventsEmitted.Add(ctx, 1)

			switch msg.Kind {
			case KindCompleted:
				outcome = OutcomeCompleted
				return outcome
			case KindError:
				outcome = OutcomeFailed
				return outcome
			}

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(m.cfg.MaxIdle)

		case <-heartbeat.C:
			if err := m.emit(w, flusher, Ping()); err != nil {
				log.Warn().Err(err).Msg("heartbeat write failed")
				outcome = OutcomeDisconnected
				return outcome
			}
			metrics.HeartbeatsEmitted.Add(ctx, 1)

		case <-idle.C:
			// One synthetic error block, then stop. Write errors no longer
			// matter; teardown is identical either way.
			_ = m.emit(w, flusher, Errorf("stream timed out: no progress within %s", m.cfg.MaxIdle))
			log.Warn().Dur("max_idle", m.cfg.MaxIdle).Msg("stream timed out waiting for job progress")
			outcome = OutcomeTimedOut
			return outcome

		case <-ctx.Done():
			log.Debug().Msg("client disconnected")
			outcome = OutcomeDisconnected
			return outcome
		}
	}
}

func (m *Multiplexer) emit(w http.ResponseWriter, flusher http.Flusher, msg *Message) error {
	b, err := Encode(msg)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
