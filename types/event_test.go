package types

import (
	"testing"
	"time"
)

func TestActivityEvent_Validate(t *testing.T) {
	now := time.Date(2026, 2, 2, 22, 14, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   ActivityEvent
		wantErr bool
	}{
		{
			name: "valid read event",
			event: ActivityEvent{
				SubjectID:   "staff001",
				Action:      ActionRead,
				Resource:    "Finance_Reports",
				RecordCount: 5200,
				Timestamp:   now,
			},
			wantErr: false,
		},
		{
			name: "valid event with origin address",
			event: ActivityEvent{
				SubjectID:   "staff001",
				Action:      ActionWrite,
				Resource:    "Own_Work",
				RecordCount: 1,
				Timestamp:   now,
				OriginAddr:  "10.10.1.5",
			},
			wantErr: false,
		},
		{
			name: "invalid - empty subject",
			event: ActivityEvent{
				Action:    ActionRead,
				Resource:  "General_Documents",
				Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "invalid - unknown action",
			event: ActivityEvent{
				SubjectID: "staff001",
				Action:    "EXECUTE",
				Resource:  "General_Documents",
				Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "invalid - lowercase action",
			event: ActivityEvent{
				SubjectID: "staff001",
				Action:    "read",
				Resource:  "General_Documents",
				Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "invalid - empty resource",
			event: ActivityEvent{
				SubjectID: "staff001",
				Action:    ActionRead,
				Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "invalid - negative record count",
			event: ActivityEvent{
				SubjectID:   "staff001",
				Action:      ActionRead,
				Resource:    "General_Documents",
				RecordCount: -1,
				Timestamp:   now,
			},
			wantErr: true,
		},
		{
			name: "invalid - zero timestamp",
			event: ActivityEvent{
				SubjectID: "staff001",
				Action:    ActionRead,
				Resource:  "General_Documents",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
