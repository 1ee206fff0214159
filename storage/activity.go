package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/vakta/types"
)

// activityEntry is the in-memory index record for one stored event,
// ordered by subject then timestamp then sequence
type activityEntry struct {
	SubjectID string
	Timestamp time.Time
	Seq       int64
}

func activityEntryLess(a, b activityEntry) bool {
	if a.SubjectID != b.SubjectID {
		return a.SubjectID < b.SubjectID
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Seq < b.Seq
}

// activityRow is the persisted form of one event
type activityRow struct {
	Seq   int64               `json:"seq"`
	Event types.ActivityEvent `json:"event"`
}

// AppendActivity stores one processed event and returns its sequence
// number. Sequence numbers are monotonic across restarts.
func (s *Store) AppendActivity(event types.ActivityEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentSeq++
	seq := s.currentSeq

	row := activityRow{Seq: seq, Event: event}
	value, err := json.Marshal(row)
	if err != nil {
		s.currentSeq--
		return 0, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketActivity).Put(activityKey(seq), value); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyCurrentSeq, seqToBytes(seq))
	})
	if err != nil {
		s.currentSeq--
		return 0, err
	}

	s.index.ReplaceOrInsert(activityEntry{
		SubjectID: event.SubjectID,
		Timestamp: event.Timestamp,
		Seq:       seq,
	})

	return seq, nil
}

// CountActivityBetween counts a subject's stored events with
// since <= timestamp < before. Served entirely from the in-memory
// index.
func (s *Store) CountActivityBetween(subjectID string, since, before time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	pivot := activityEntry{SubjectID: subjectID, Timestamp: since}

	s.index.AscendGreaterOrEqual(pivot, func(entry activityEntry) bool {
		if entry.SubjectID != subjectID {
			return false
		}
		if !entry.Timestamp.Before(before) {
			return false
		}
		count++
		return true
	})

	return count, nil
}

// rebuildIndex reloads the activity index from disk at open
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketActivity).ForEach(func(k, v []byte) error {
			var row activityRow
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("corrupt activity row %q: %w", k, err)
			}
			s.index.ReplaceOrInsert(activityEntry{
				SubjectID: row.Event.SubjectID,
				Timestamp: row.Event.Timestamp,
				Seq:       row.Seq,
			})
			return nil
		})
	})
}

func activityKey(seq int64) []byte {
	return []byte(fmt.Sprintf("%020d", seq))
}
