package storage

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/vakta/types"
)

// AppendAlert persists one generated alert
func (s *Store) AppendAlert(alert types.Alert) error {
	if err := alert.Validate(); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}
	return s.putJSON(bucketAlerts, alertKey(alert), alert)
}

// QueryAlerts returns alerts matching the filter, newest first
func (s *Store) QueryAlerts(filter types.AlertFilter) ([]types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []types.Alert

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAlerts).Cursor()

		// Keys sort by generation time, so a reverse walk yields
		// newest first
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var alert types.Alert
			if err := json.Unmarshal(v, &alert); err != nil {
				return fmt.Errorf("corrupt alert row %q: %w", k, err)
			}
			if filter.Matches(&alert) {
				alerts = append(alerts, alert)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// LatestAlertForSubject returns the subject's most recent alert, or
// (nil, nil) when the subject has never alerted
func (s *Store) LatestAlertForSubject(subjectID string) (*types.Alert, error) {
	alerts, err := s.QueryAlerts(types.AlertFilter{SubjectID: subjectID})
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}
	return &alerts[0], nil
}

// alertKeyFormat is fixed-width so keys sort lexicographically in
// generation-time order
const alertKeyFormat = "2006-01-02T15:04:05.000000000Z"

func alertKey(alert types.Alert) []byte {
	return []byte(alert.GeneratedAt.UTC().Format(alertKeyFormat) + "|" + alert.ID)
}
