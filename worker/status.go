package worker

import (
	"listing-manager/bulk"
)

// FailedItem is a failed job as shown to the uploader.
type FailedItem struct {
	ID      int64    `json:"id"`
	SKU     string   `json:"sku,omitempty"`
	Title   string   `json:"title,omitempty"`
	Error   string   `json:"error"`
	RawData bulk.Row `json:"rawData"`
	Details any      `json:"details,omitempty"`
}

// Status is one consistent view of the current batch. The three counts
// always add up to Total.
type Status struct {
	BatchID      string       `json:"batchId,omitempty"`
	Total        int          `json:"totalCount"`
	PendingCount int          `json:"pendingCount"`
	SuccessCount int          `json:"successCount"`
	FailedCount  int          `json:"failedCount"`
	IsProcessing bool         `json:"isProcessing"`
	Complete     bool         `json:"complete"`
	FailedItems  []FailedItem `json:"failedItems"`
}

// Reporter builds Status values; it never blocks the drain for longer than
// a snapshot copy.
type Reporter struct {
	proc *Processor
}

func NewReporter(p *Processor) *Reporter {
	return &Reporter{proc: p}
}

func (r *Reporter) Status() Status {
	processing := r.proc.IsProcessing()
	jobs := r.proc.Queue().Snapshot()

	st := Status{
		BatchID:      r.proc.BatchID(),
		Total:        len(jobs),
		IsProcessing: processing,
		FailedItems:  []FailedItem{},
	}
	for _, j := range jobs {
		switch j.State {
		case StatePending:
			st.PendingCount++
		case StateSuccess:
			st.SuccessCount++
		case StateFailed:
			st.FailedCount++
			id := bulk.Identify(j.Row, j.Format)
			st.FailedItems = append(st.FailedItems, FailedItem{
				ID:      j.ID,
				SKU:     id.SKU,
				Title:   id.Title,
				Error:   j.Error,
				RawData: j.Row,
				Details: j.RawDetails,
			})
		}
	}
	st.Complete = st.Total > 0 && st.PendingCount == 0
	return st
}

// FailedJobs returns the failed jobs of the current batch in queue order.
func (r *Reporter) FailedJobs() []Job {
	var out []Job
	for _, j := range r.proc.Queue().Snapshot() {
		if j.State == StateFailed {
			out = append(out, j)
		}
	}
	return out
}
