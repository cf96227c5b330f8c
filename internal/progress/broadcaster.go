package progress

import (
	"log/slog"
	"sync"
)

// Sink receives progress messages for a single observer. Implementations
// must be comparable (pointer types are fine) so they can act as set
// members. A Send error marks the sink dead; it is pruned and receives
// no further messages.
type Sink interface {
	Send(Message) error
}

// Broadcaster fans progress messages out to all live observers of a job.
// It holds no history: publishing to a job with no subscribers is a
// no-op, and a late subscriber never sees earlier messages.
//
// Constructed once at startup and injected; lives for the process.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]map[Sink]struct{}
	logger *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subs:   make(map[string]map[Sink]struct{}),
		logger: logger,
	}
}

// Subscribe registers sink under the job's observer set, creating the
// set if absent.
func (b *Broadcaster) Subscribe(jobID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[jobID]
	if !ok {
		set = make(map[Sink]struct{})
		b.subs[jobID] = set
	}
	set[sink] = struct{}{}
	b.logger.Debug("observer subscribed", "job_id", jobID, "observers", len(set))
}

// Unsubscribe removes sink from the job's observer set and drops the
// set once empty.
func (b *Broadcaster) Unsubscribe(jobID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(jobID, sink)
}

func (b *Broadcaster) removeLocked(jobID string, sink Sink) {
	set, ok := b.subs[jobID]
	if !ok {
		return
	}
	delete(set, sink)
	if len(set) == 0 {
		delete(b.subs, jobID)
	}
}

// Publish delivers msg to a point-in-time snapshot of the job's current
// subscribers. A sink that fails is removed as a side effect; its failure
// never aborts delivery to the remaining sinks in the same call.
func (b *Broadcaster) Publish(jobID string, msg Message) {
	b.mu.Lock()
	set, ok := b.subs[jobID]
	if !ok {
		b.mu.Unlock()
		return
	}
	snapshot := make([]Sink, 0, len(set))
	for sink := range set {
		snapshot = append(snapshot, sink)
	}
	b.mu.Unlock()

	var dead []Sink
	for _, sink := range snapshot {
		if err := sink.Send(msg); err != nil {
			b.logger.Debug("dropping dead observer", "job_id", jobID, "error", err)
			dead = append(dead, sink)
		}
	}

	if len(dead) > 0 {
		b.mu.Lock()
		for _, sink := range dead {
			b.removeLocked(jobID, sink)
		}
		b.mu.Unlock()
	}
}

// Subscribers returns the current observer count for a job.
func (b *Broadcaster) Subscribers(jobID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[jobID])
}
