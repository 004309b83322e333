package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-manager/bulk"
	"listing-manager/listing"
	"listing-manager/logging"
	"listing-manager/marketplace"
)

type titleRenderer struct{}

func (titleRenderer) Render(l *listing.Listing, credential string) ([]byte, error) {
	if l.Title == "panic" {
		panic("renderer blew up")
	}
	return []byte(l.Title), nil
}

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []string
	creds    []string
	gate     chan struct{}
	fail     map[string]error
}

func (f *fakeSubmitter) AddItem(ctx context.Context, credential string, payload []byte) (*marketplace.AddItemResult, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, string(payload))
	f.creds = append(f.creds, credential)
	if err, ok := f.fail[string(payload)]; ok {
		return nil, err
	}
	return &marketplace.AddItemResult{ItemID: fmt.Sprintf("item-%d", len(f.payloads)), Ack: marketplace.AckSuccess}, nil
}

func (f *fakeSubmitter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.payloads...)
}

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) Append(logging.ErrorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("disk full")
}

func rowSet(titles ...string) *bulk.RowSet {
	set := &bulk.RowSet{Columns: []string{"title", "description", "price", "quantity", "category_id"}}
	for _, title := range titles {
		set.Rows = append(set.Rows, bulk.Row{
			"title": title, "description": "d", "price": "1.00", "quantity": "1", "category_id": "1",
		})
	}
	return set
}

func newTestProcessor(sub Submitter, sink ErrorSink) *Processor {
	return NewProcessor(context.Background(), ProcessorConfig{
		Submitter: sub,
		Renderer:  titleRenderer{},
		ErrorLog:  sink,
	})
}

func waitComplete(t *testing.T, r *Reporter) Status {
	t.Helper()
	require.Eventually(t, func() bool {
		st := r.Status()
		return st.Complete && !st.IsProcessing
	}, 5*time.Second, 5*time.Millisecond)
	return r.Status()
}

func TestProcessorMixedBatch(t *testing.T) {
	sub := &fakeSubmitter{}
	errLog := logging.NewErrorLog(t.TempDir(), "errors.log")
	p := newTestProcessor(sub, errLog)
	r := NewReporter(p)

	set := rowSet("A", "B", "C")
	set.Rows[1]["category_id"] = ""
	set.Rows[1]["sku"] = "SKU-B"

	s := p.Submit(set, bulk.FormatStandard, "tok")
	assert.Equal(t, 3, s.QueueSize)
	assert.Equal(t, 3, s.Added)
	assert.False(t, s.Appended)
	assert.NotEmpty(t, s.BatchID)

	st := waitComplete(t, r)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.SuccessCount)
	assert.Equal(t, 1, st.FailedCount)
	assert.Equal(t, 0, st.PendingCount)
	assert.Equal(t, s.BatchID, st.BatchID)

	require.Len(t, st.FailedItems, 1)
	failed := st.FailedItems[0]
	assert.Equal(t, "SKU-B", failed.SKU)
	assert.Equal(t, "B", failed.Title)
	assert.Contains(t, failed.Error, "category")
	assert.Equal(t, "", failed.RawData["category_id"])
	assert.NotNil(t, failed.Details)

	assert.Equal(t, []string{"A", "C"}, sub.seen())

	content, ok, err := errLog.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, content, "ERROR: missing required field(s): category")
	assert.Contains(t, content, "SKU: SKU-B")
	assert.Contains(t, content, "Title: B")
}

func TestProcessorMarketplaceFailureKeepsDetails(t *testing.T) {
	sub := &fakeSubmitter{fail: map[string]error{
		"B": &marketplace.SubmissionError{
			Call:    "AddItem",
			Message: "Invalid category., Price too low.",
			Details: []marketplace.ErrorDetail{{LongMessage: "Invalid category."}, {ShortMessage: "Price too low."}},
		},
	}}
	p := newTestProcessor(sub, nil)
	r := NewReporter(p)
	p.Submit(rowSet("A", "B"), bulk.FormatStandard, "tok")

	st := waitComplete(t, r)
	require.Len(t, st.FailedItems, 1)
	assert.Equal(t, "Invalid category., Price too low.", st.FailedItems[0].Error)
	details, ok := st.FailedItems[0].Details.([]marketplace.ErrorDetail)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestProcessorAppendsWhileDraining(t *testing.T) {
	sub := &fakeSubmitter{gate: make(chan struct{})}
	p := newTestProcessor(sub, nil)
	r := NewReporter(p)

	first := p.Submit(rowSet("A", "B"), bulk.FormatStandard, "tok-1")
	require.True(t, p.IsProcessing())

	second := p.Submit(rowSet("C"), bulk.FormatStandard, "tok-2")
	assert.True(t, second.Appended)
	assert.Equal(t, first.BatchID, second.BatchID)
	assert.Equal(t, 3, second.QueueSize)
	assert.Equal(t, 3, r.Status().Total)

	close(sub.gate)
	st := waitComplete(t, r)
	assert.Equal(t, 3, st.SuccessCount)
	assert.Equal(t, []string{"A", "B", "C"}, sub.seen())

	sub.mu.Lock()
	assert.Equal(t, []string{"tok-1", "tok-1", "tok-2"}, sub.creds)
	sub.mu.Unlock()
}

func TestProcessorResetsWhenIdle(t *testing.T) {
	sub := &fakeSubmitter{}
	p := newTestProcessor(sub, nil)
	r := NewReporter(p)

	first := p.Submit(rowSet("A", "B"), bulk.FormatStandard, "tok")
	waitComplete(t, r)
	firstJobs := p.Queue().Snapshot()

	second := p.Submit(rowSet("C"), bulk.FormatStandard, "tok")
	assert.False(t, second.Appended)
	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.Equal(t, 1, second.QueueSize)

	waitComplete(t, r)
	jobs := p.Queue().Snapshot()
	require.Len(t, jobs, 1)
	assert.Greater(t, jobs[0].ID, firstJobs[len(firstJobs)-1].ID)
	assert.Equal(t, second.BatchID, jobs[0].BatchID)
}

func TestProcessorSinkFailureDoesNotStopDrain(t *testing.T) {
	sink := &failingSink{}
	p := newTestProcessor(&fakeSubmitter{}, sink)
	r := NewReporter(p)

	set := rowSet("A", "B", "C")
	set.Rows[0]["title"] = ""
	set.Rows[1]["description"] = ""
	p.Submit(set, bulk.FormatStandard, "tok")

	st := waitComplete(t, r)
	assert.Equal(t, 2, st.FailedCount)
	assert.Equal(t, 1, st.SuccessCount)
	sink.mu.Lock()
	assert.Equal(t, 2, sink.calls)
	sink.mu.Unlock()
}

func TestProcessorRecoversFromPanic(t *testing.T) {
	p := newTestProcessor(&fakeSubmitter{}, nil)
	r := NewReporter(p)
	p.Submit(rowSet("panic", "fine"), bulk.FormatStandard, "tok")

	st := waitComplete(t, r)
	assert.Equal(t, 1, st.FailedCount)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Contains(t, st.FailedItems[0].Error, "renderer blew up")
}

func TestProcessorPausesBetweenJobs(t *testing.T) {
	p := NewProcessor(context.Background(), ProcessorConfig{
		Submitter: &fakeSubmitter{},
		Renderer:  titleRenderer{},
		Delay:     200 * time.Millisecond,
	})
	var mu sync.Mutex
	var pauses []time.Duration
	p.sleep = func(d time.Duration) {
		mu.Lock()
		pauses = append(pauses, d)
		mu.Unlock()
	}
	set := rowSet("A", "B", "C")
	set.Rows[1]["title"] = ""
	p.Submit(set, bulk.FormatStandard, "tok")
	waitComplete(t, NewReporter(p))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond}, pauses)
}

func TestStatusCountsAlwaysAddUp(t *testing.T) {
	p := newTestProcessor(&fakeSubmitter{}, nil)
	r := NewReporter(p)

	titles := make([]string, 50)
	for i := range titles {
		titles[i] = fmt.Sprintf("item %d", i)
	}
	set := rowSet(titles...)
	for i := 0; i < len(set.Rows); i += 7 {
		set.Rows[i]["category_id"] = ""
	}
	p.Submit(set, bulk.FormatStandard, "tok")

	var wg sync.WaitGroup
	errs := make(chan string, 1)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				st := r.Status()
				if st.PendingCount+st.SuccessCount+st.FailedCount != st.Total || len(st.FailedItems) != st.FailedCount {
					select {
					case errs <- fmt.Sprintf("torn status: %+v", st):
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}

	st := waitComplete(t, r)
	assert.Equal(t, 50, st.Total)
	assert.Equal(t, 8, st.FailedCount)
	assert.Len(t, NewReporter(p).FailedJobs(), 8)
}

func TestStatusEmptyQueue(t *testing.T) {
	st := NewReporter(newTestProcessor(&fakeSubmitter{}, nil)).Status()
	assert.Equal(t, 0, st.Total)
	assert.False(t, st.Complete)
	assert.False(t, st.IsProcessing)
	assert.NotNil(t, st.FailedItems)
}

func TestErrorLogIsNotTruncatedByReset(t *testing.T) {
	dir := t.TempDir()
	errLog := logging.NewErrorLog(dir, "errors.log")
	p := newTestProcessor(&fakeSubmitter{}, errLog)
	r := NewReporter(p)

	for i := 0; i < 2; i++ {
		set := rowSet(fmt.Sprintf("run %d", i))
		set.Rows[0]["category_id"] = ""
		p.Submit(set, bulk.FormatStandard, "tok")
		waitComplete(t, r)
	}
	b, err := os.ReadFile(errLog.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "ERROR:"))
}

func TestDrainIsIdempotent(t *testing.T) {
	sub := &fakeSubmitter{}
	p := newTestProcessor(sub, nil)
	r := NewReporter(p)
	set := rowSet("A", "B")
	set.Rows[1]["category_id"] = ""
	p.Submit(set, bulk.FormatStandard, "tok")
	before := waitComplete(t, r)

	p.drain()

	assert.Equal(t, []string{"A"}, sub.seen())
	after := r.Status()
	assert.Equal(t, before.SuccessCount, after.SuccessCount)
	assert.Equal(t, before.FailedCount, after.FailedCount)
	assert.False(t, after.IsProcessing)
}

type blockingAudit struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	lines []string
}

func (a *blockingAudit) Writef(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if strings.HasPrefix(line, "[QUEUE]") {
		a.once.Do(func() { close(a.entered) })
		<-a.release
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, line)
}

func TestSlowAuditDoesNotBlockStatus(t *testing.T) {
	audit := &blockingAudit{entered: make(chan struct{}), release: make(chan struct{})}
	p := NewProcessor(context.Background(), ProcessorConfig{
		Submitter: &fakeSubmitter{},
		Renderer:  titleRenderer{},
		Audit:     audit,
	})
	r := NewReporter(p)

	submitted := make(chan Submission, 1)
	go func() { submitted <- p.Submit(rowSet("A"), bulk.FormatStandard, "tok") }()
	<-audit.entered

	polled := make(chan Status, 1)
	go func() { polled <- r.Status() }()
	select {
	case st := <-polled:
		assert.Equal(t, 1, st.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("status poll blocked behind the audit write")
	}

	close(audit.release)
	sub := <-submitted
	assert.Equal(t, 1, sub.Added)
	waitComplete(t, r)

	audit.mu.Lock()
	defer audit.mu.Unlock()
	require.NotEmpty(t, audit.lines)
	assert.Contains(t, strings.Join(audit.lines, "\n"), "[QUEUE] batch="+sub.BatchID)
}
