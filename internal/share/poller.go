package share

import (
	"context"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/logging"
)

// fetchTimeout is the maximum time allowed for a single poll.
const fetchTimeout = 30 * time.Second

// Defaults for a Poller.
const (
	DefaultInterval  = 5 * time.Minute
	DefaultBatchSize = 50
)

// Source is where the poller reads shared items from. *Inbox satisfies it.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]Item, error)
	MarkSeen(ctx context.Context, uids []uint32) error
}

// Sink receives each successfully parsed item, typically a session create.
type Sink func(ctx context.Context, in engine.CreateInput) error

// Result summarises one poll.
type Result struct {
	Created int
	Skipped int
	Failed  int
	Err     error
	At      time.Time
}

// Poller periodically moves shared items from a Source into a Sink.
type Poller struct {
	src      Source
	sink     Sink
	interval time.Duration
	batch    int
	log      logrus.FieldLogger

	resultCh  chan Result
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	lastPoll  Result
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the time between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBatchSize caps how many messages one poll fetches.
func WithBatchSize(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.batch = n
		}
	}
}

// WithPollerLogger sets the poller's logger.
func WithPollerLogger(l logrus.FieldLogger) PollerOption {
	return func(p *Poller) { p.log = logging.Component(l, "share") }
}

// NewPoller creates a poller. Call Start to begin polling.
func NewPoller(src Source, sink Sink, opts ...PollerOption) *Poller {
	p := &Poller{
		src:       src,
		sink:      sink,
		interval:  DefaultInterval,
		batch:     DefaultBatchSize,
		log:       logging.Component(nil, "share"),
		resultCh:  make(chan Result, 16),
		triggerCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling goroutine. It polls once immediately, then
// on every tick or Refresh until Stop. Calling Start twice is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	go p.loop(p.stopCh)
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll without blocking.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Results delivers one Result per poll. Results are dropped when nobody
// reads them.
func (p *Poller) Results() <-chan Result {
	return p.resultCh
}

// LastResult returns the outcome of the most recent poll.
func (p *Poller) LastResult() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPoll
}

func (p *Poller) loop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollAndSend()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.pollAndSend()
		case <-p.triggerCh:
			p.pollAndSend()
		}
	}
}

func (p *Poller) pollAndSend() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	res := p.PollOnce(ctx)

	select {
	case p.resultCh <- res:
	default:
	}
}

// PollOnce runs a single fetch. Parsed items go to the sink; an item is
// marked seen once the sink accepted it or it could not be parsed at all.
// Items the sink rejects stay unseen and are retried on the next poll.
func (p *Poller) PollOnce(ctx context.Context) Result {
	res := Result{At: time.Now()}
	defer func() {
		p.mu.Lock()
		p.lastPoll = res
		p.mu.Unlock()
	}()

	items, err := p.src.Fetch(ctx, p.batch)
	if err != nil {
		p.log.WithError(err).Warn("fetching shared items")
		res.Err = err
		if len(items) == 0 {
			return res
		}
	}

	var seen []uint32
	for _, it := range items {
		if it.Err != nil {
			res.Skipped++
			seen = append(seen, it.UID)
			continue
		}
		if err := p.sink(ctx, it.Input); err != nil {
			p.log.WithError(err).WithField("uid", it.UID).Warn("creating shared reminder")
			res.Failed++
			continue
		}
		res.Created++
		seen = append(seen, it.UID)
	}

	if err := p.src.MarkSeen(ctx, seen); err != nil {
		p.log.WithError(err).Warn("marking shared items seen")
		if res.Err == nil {
			res.Err = err
		}
	}

	if res.Created > 0 {
		p.log.WithField("created", res.Created).Info("shared items imported")
	}
	return res
}
