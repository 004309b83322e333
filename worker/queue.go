package worker

import (
	"sync"
	"time"
)

// Queue is the in-memory job list of the current batch. Readers get copies;
// IDs are unique for the life of the process, across resets.
type Queue struct {
	mu     sync.RWMutex
	jobs   []Job
	index  map[int64]int
	head   int // no pending job before this position
	nextID int64
}

func NewQueue() *Queue {
	return &Queue{index: map[int64]int{}}
}

// Enqueue appends jobs as pending, assigns their IDs and returns them.
func (q *Queue) Enqueue(jobs []Job) []int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		q.nextID++
		j.ID = q.nextID
		j.State = StatePending
		if j.EnqueuedAt.IsZero() {
			j.EnqueuedAt = time.Now()
		}
		q.index[j.ID] = len(q.jobs)
		q.jobs = append(q.jobs, j)
		ids = append(ids, j.ID)
	}
	return ids
}

// NextPending returns the oldest pending job without changing it.
func (q *Queue) NextPending() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head < len(q.jobs) && q.jobs[q.head].State != StatePending {
		q.head++
	}
	if q.head == len(q.jobs) {
		return Job{}, false
	}
	return q.jobs[q.head], true
}

// Complete marks a pending job successful. It reports false for unknown or
// already finished jobs.
func (q *Queue) Complete(id int64, itemID string) bool {
	return q.finish(id, func(j *Job) {
		j.State = StateSuccess
		j.ResultItemID = itemID
	})
}

// Fail marks a pending job failed with msg and optional structured details.
func (q *Queue) Fail(id int64, msg string, details any) bool {
	return q.finish(id, func(j *Job) {
		j.State = StateFailed
		j.Error = msg
		j.RawDetails = details
	})
}

func (q *Queue) finish(id int64, set func(*Job)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, ok := q.index[id]
	if !ok || q.jobs[i].State != StatePending {
		return false
	}
	set(&q.jobs[i])
	q.jobs[i].FinishedAt = time.Now()
	return true
}

// Snapshot copies every job in enqueue order under one read lock.
func (q *Queue) Snapshot() []Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.jobs)
}

// Reset drops every job. The ID counter keeps going.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = nil
	q.index = map[int64]int{}
	q.head = 0
}
