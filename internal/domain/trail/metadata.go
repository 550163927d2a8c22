package trail

import (
	"encoding/json"
	"time"
)

// Metadata is the execution ledger owned by a Footprint.
// It is created once per footprint and is only ever mutated by a Trail;
// everyone else gets read-only copies.
type Metadata struct {
	runID      string
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	records    []ExecutionRecord
	tags       map[string]string
}

// NewMetadata creates an empty ledger stamped with the current UTC time.
func NewMetadata() *Metadata {
	return &Metadata{
		createdAt: time.Now().UTC(),
		tags:      make(map[string]string),
	}
}

// RunID returns the identifier of the last execution run, or "" if the
// footprint has never been executed.
func (m *Metadata) RunID() string {
	return m.runID
}

// CreatedAt returns when the ledger was created.
func (m *Metadata) CreatedAt() time.Time {
	return m.createdAt
}

// StartedAt returns when the last run started.
func (m *Metadata) StartedAt() time.Time {
	return m.startedAt
}

// FinishedAt returns when the last run finished, successfully or not.
func (m *Metadata) FinishedAt() time.Time {
	return m.finishedAt
}

// Records returns a copy of the execution records in append order.
func (m *Metadata) Records() []ExecutionRecord {
	out := make([]ExecutionRecord, len(m.records))
	for i, rec := range m.records {
		out[i] = rec.clone()
	}
	return out
}

// Len returns the number of execution records.
func (m *Metadata) Len() int {
	return len(m.records)
}

// Handlers returns the names of steps that completed successfully, in order.
func (m *Metadata) Handlers() []string {
	names := make([]string, 0, len(m.records))
	for _, rec := range m.records {
		if rec.Outcome.IsSuccess() {
			names = append(names, rec.StepName)
		}
	}
	return names
}

// Tags returns a copy of the tag set.
func (m *Metadata) Tags() map[string]string {
	return copyTags(m.tags)
}

// Tag returns a single tag value.
func (m *Metadata) Tag(key string) (string, bool) {
	v, ok := m.tags[key]
	return v, ok
}

// beginRun starts a new run: assigns the run id, merges tags and resets
// the finish timestamp. Records from previous runs are kept.
func (m *Metadata) beginRun(runID string, tags map[string]string, now time.Time) {
	m.runID = runID
	m.startedAt = now
	m.finishedAt = time.Time{}
	if m.tags == nil {
		m.tags = make(map[string]string, len(tags))
	}
	for k, v := range tags {
		m.tags[k] = v
	}
}

func (m *Metadata) appendRecord(rec ExecutionRecord) {
	m.records = append(m.records, rec)
}

func (m *Metadata) finishRun(now time.Time) {
	m.finishedAt = now
}

// MetadataSnapshot is a serializable view of a Metadata ledger.
type MetadataSnapshot struct {
	RunID      string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Handlers   []string          `json:"handlers" yaml:"handlers"`
	Records    []ExecutionRecord `json:"records" yaml:"records"`
	Tags       map[string]string `json:"tags" yaml:"tags"`
}

// Snapshot returns a detached copy of the ledger.
func (m *Metadata) Snapshot() MetadataSnapshot {
	return MetadataSnapshot{
		RunID:      m.runID,
		CreatedAt:  m.createdAt,
		StartedAt:  timePtr(m.startedAt),
		FinishedAt: timePtr(m.finishedAt),
		Handlers:   m.Handlers(),
		Records:    m.Records(),
		Tags:       m.Tags(),
	}
}

// MarshalJSON implements json.Marshaler.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// ExecutionRecord describes one step invocation.
type ExecutionRecord struct {
	StepName   string            `json:"step" yaml:"step"`
	Index      int               `json:"index" yaml:"index"`
	Tags       map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at"`
	Outcome    Outcome           `json:"outcome" yaml:"outcome"`
}

// Duration returns how long the invocation took.
func (r ExecutionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r ExecutionRecord) clone() ExecutionRecord {
	r.Tags = copyTags(r.Tags)
	return r
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
