package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-manager/bulk"
	"listing-manager/listing"
	"listing-manager/logging"
	"listing-manager/marketplace"
)

// Submitter posts a rendered add-item request.
type Submitter interface {
	AddItem(ctx context.Context, credential string, payload []byte) (*marketplace.AddItemResult, error)
}

// Renderer turns a mapped listing into a request body.
type Renderer interface {
	Render(l *listing.Listing, credential string) ([]byte, error)
}

// ErrorSink records failed jobs durably.
type ErrorSink interface {
	Append(e logging.ErrorEntry) error
}

// AuditLog takes one line per queue event. *logging.Logger implements it.
type AuditLog interface {
	Writef(format string, args ...any)
}

// MapFunc projects a CSV row onto a listing.
type MapFunc func(row bulk.Row, format bulk.Format) (*listing.Listing, error)

// rawDetailer is implemented by errors that carry structured data for the
// status display.
type rawDetailer interface {
	RawDetails() any
}

type ProcessorConfig struct {
	Queue     *Queue
	Submitter Submitter
	Renderer  Renderer
	// Map defaults to bulk.Map.
	Map      MapFunc
	ErrorLog ErrorSink
	// Audit gets one line per job; nil disables it.
	Audit AuditLog
	// Delay is the pause after every job, success or failure.
	Delay time.Duration
}

// Processor drains the queue one job at a time. At most one drain runs;
// uploads arriving while it runs join the current batch.
type Processor struct {
	ctx       context.Context
	queue     *Queue
	submitter Submitter
	renderer  Renderer
	mapRow    MapFunc
	errLog    ErrorSink
	audit     AuditLog
	delay     time.Duration
	sleep     func(time.Duration)

	mu      sync.Mutex
	running bool
	batchID string
}

// NewProcessor binds the drain loop to ctx, which should live as long as
// the process: submissions outlive the request that enqueued them.
func NewProcessor(ctx context.Context, cfg ProcessorConfig) *Processor {
	if cfg.Map == nil {
		cfg.Map = bulk.Map
	}
	if cfg.Queue == nil {
		cfg.Queue = NewQueue()
	}
	if cfg.Audit == nil {
		cfg.Audit = (*logging.Logger)(nil)
	}
	return &Processor{
		ctx:       ctx,
		queue:     cfg.Queue,
		submitter: cfg.Submitter,
		renderer:  cfg.Renderer,
		mapRow:    cfg.Map,
		errLog:    cfg.ErrorLog,
		audit:     cfg.Audit,
		delay:     cfg.Delay,
		sleep:     time.Sleep,
	}
}

func (p *Processor) Queue() *Queue { return p.queue }

// Submit enqueues every row of set. An idle processor starts a fresh batch
// (the previous one is dropped) and a drain; a busy one appends to the
// running batch.
func (p *Processor) Submit(set *bulk.RowSet, format bulk.Format, credential string) Submission {
	p.mu.Lock()
	appended := p.running
	if !appended {
		p.queue.Reset()
		p.batchID = uuid.NewString()
	}
	now := time.Now()
	jobs := make([]Job, 0, len(set.Rows))
	for _, row := range set.Rows {
		jobs = append(jobs, Job{
			BatchID:    p.batchID,
			Row:        row,
			Columns:    set.Columns,
			Format:     format,
			Credential: credential,
			EnqueuedAt: now,
		})
	}
	p.queue.Enqueue(jobs)
	if !p.running {
		p.running = true
		go p.drain()
	}
	sub := Submission{
		BatchID:   p.batchID,
		Added:     len(jobs),
		QueueSize: p.queue.Len(),
		Appended:  appended,
	}
	p.mu.Unlock()

	p.audit.Writef("[QUEUE] batch=%s rows=%d format=%s appended=%t", sub.BatchID, sub.Added, format, sub.Appended)
	return sub
}

func (p *Processor) IsProcessing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) BatchID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batchID
}

func (p *Processor) drain() {
	slog.Info("bulk drain started", "batch", p.BatchID())
	for {
		job, ok := p.next()
		if !ok {
			slog.Info("bulk drain finished", "batch", job.BatchID)
			return
		}
		p.process(job)
		if p.delay > 0 {
			p.sleep(p.delay)
		}
	}
}

// next hands out the oldest pending job, or marks the processor idle. Both
// happen under p.mu so a concurrent Submit either sees running=true and its
// jobs get picked up here, or sees running=false and starts its own drain.
func (p *Processor) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.queue.NextPending()
	if !ok {
		p.running = false
		return Job{BatchID: p.batchID}, false
	}
	return job, true
}

func (p *Processor) process(job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bulk job panicked", "job", job.ID, "panic", r)
			p.fail(job, fmt.Errorf("internal error: %v", r))
		}
	}()

	p.audit.Writef("[START] batch=%s job=%d", job.BatchID, job.ID)
	itemID, err := p.submit(job)
	if err != nil {
		p.fail(job, err)
		return
	}
	p.queue.Complete(job.ID, itemID)
	p.audit.Writef("[COMPLETE] batch=%s job=%d item=%s", job.BatchID, job.ID, itemID)
}

func (p *Processor) submit(job Job) (string, error) {
	l, err := p.mapRow(job.Row, job.Format)
	if err != nil {
		return "", err
	}
	payload, err := p.renderer.Render(l, job.Credential)
	if err != nil {
		return "", err
	}
	res, err := p.submitter.AddItem(p.ctx, job.Credential, payload)
	if err != nil {
		return "", err
	}
	return res.ItemID, nil
}

func (p *Processor) fail(job Job, err error) {
	var details any
	var rd rawDetailer
	if errors.As(err, &rd) {
		details = rd.RawDetails()
	}
	if !p.queue.Fail(job.ID, err.Error(), details) {
		return
	}
	p.audit.Writef("[FAIL] batch=%s job=%d error=%q", job.BatchID, job.ID, err.Error())
	if p.errLog == nil {
		return
	}
	id := bulk.Identify(job.Row, job.Format)
	entry := logging.ErrorEntry{
		Time:     time.Now(),
		BatchID:  job.BatchID,
		JobID:    job.ID,
		Error:    err.Error(),
		SKU:      id.SKU,
		Title:    id.Title,
		Category: id.Category,
		Price:    id.Price,
		Image:    id.Image,
	}
	if lerr := p.errLog.Append(entry); lerr != nil {
		slog.Error("writing bulk error log", "job", job.ID, "error", lerr)
	}
}
