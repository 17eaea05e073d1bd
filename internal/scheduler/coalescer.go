package scheduler

import (
	"context"
	"sync"

	"github.com/vk/fxbuild/internal/ctxlog"
)

// Request describes why a rebuild is wanted.
type Request struct {
	// Refresh asks the host to rescan its resource index after the build.
	Refresh bool
	// Events counts the triggers merged into this request.
	Events int
}

func (r Request) merge(other Request) Request {
	return Request{
		Refresh: r.Refresh || other.Refresh,
		Events:  r.Events + other.Events,
	}
}

// Job runs one rebuild for a (possibly merged) request.
type Job func(ctx context.Context, req Request)

// Coalescer runs jobs one at a time with a pending queue of depth one.
type Coalescer struct {
	job  Job
	wake chan struct{}

	mu      sync.Mutex
	pending *Request
}

// New creates a coalescer that runs job for every batch of triggers.
func New(job Job) *Coalescer {
	return &Coalescer{
		job:  job,
		wake: make(chan struct{}, 1),
	}
}

// Trigger requests a rebuild. It never blocks.
func (c *Coalescer) Trigger(req Request) {
	if req.Events == 0 {
		req.Events = 1
	}

	c.mu.Lock()
	if c.pending == nil {
		c.pending = &req
	} else {
		merged := c.pending.merge(req)
		c.pending = &merged
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a request is waiting to run.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Coalescer) take() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Request{}, false
	}
	req := *c.pending
	c.pending = nil
	return req, true
}

// Run processes requests until ctx is cancelled. An in-flight job is allowed
// to finish; requests still pending at cancellation are dropped.
func (c *Coalescer) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Rebuild scheduler started.")
	defer logger.Debug("Rebuild scheduler stopped.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
		}

		req, ok := c.take()
		if !ok {
			continue
		}
		if req.Events > 1 {
			logger.Debug("Coalesced rebuild triggers.", "events", req.Events, "refresh", req.Refresh)
		}
		c.job(ctx, req)
	}
}
