package eventlog

import (
	"fmt"
	"strconv"

	"sprintlens/internal/burndown"
)

// ScopeRecord is a single atomic scope-change of one sprint item. It is the
// unit of the append-only sprint event log.
type ScopeRecord struct {
	// Timestamp is the physical time the change occurred (Unix milliseconds).
	Timestamp int64 `json:"ts"`
	// Key is the work item key (e.g., PROJ-123).
	Key string `json:"key"`

	Added   bool `json:"added,omitempty"`
	Removed bool `json:"removed,omitempty"`
	Deleted bool `json:"deleted,omitempty"`
	Done    bool `json:"done,omitempty"`
	NotDone bool `json:"notDone,omitempty"`

	// NewStatus is set when the change came from a column transition.
	NewStatus string `json:"newStatus,omitempty"`
}

// identity computes a unique string identifier for a record to aid deduplication.
func (r ScopeRecord) identity() string {
	return fmt.Sprintf("%d|%s|%t%t%t%t%t|%s",
		r.Timestamp,
		r.Key,
		r.Added, r.Removed, r.Deleted, r.Done, r.NotDone,
		r.NewStatus,
	)
}

// Flatten converts timestamp-bucketed scope events into a flat record list.
// Buckets with unparsable keys are dropped.
func Flatten(changes map[string][]burndown.ScopeEvent) []ScopeRecord {
	var records []ScopeRecord
	for tsKey, events := range changes {
		ts, err := strconv.ParseInt(tsKey, 10, 64)
		if err != nil {
			continue
		}
		for _, e := range events {
			r := ScopeRecord{
				Timestamp: ts,
				Key:       e.Key,
				Added:     e.Added,
				Removed:   e.Removed,
				Deleted:   e.Deleted,
				Done:      e.Done,
				NotDone:   e.NotDone,
			}
			if e.Column != nil {
				r.Done = r.Done || e.Column.Done
				r.NotDone = r.NotDone || e.Column.NotDone
				r.NewStatus = e.Column.NewStatus
			}
			records = append(records, r)
		}
	}
	return records
}

// Rebucket converts a flat record list back into the timestamp-bucketed form
// the burndown replayer consumes. Column transitions are restored for records
// carrying a status.
func Rebucket(records []ScopeRecord) map[string][]burndown.ScopeEvent {
	changes := make(map[string][]burndown.ScopeEvent)
	for _, r := range records {
		key := strconv.FormatInt(r.Timestamp, 10)
		e := burndown.ScopeEvent{
			Key:     r.Key,
			Added:   r.Added,
			Removed: r.Removed,
			Deleted: r.Deleted,
		}
		if r.NewStatus != "" {
			e.Column = &burndown.ColumnChange{
				Done:      r.Done,
				NotDone:   r.NotDone,
				NewStatus: r.NewStatus,
			}
		} else {
			e.Done = r.Done
			e.NotDone = r.NotDone
		}
		changes[key] = append(changes[key], e)
	}
	return changes
}
