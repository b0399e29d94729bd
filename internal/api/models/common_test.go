package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldview/eldview/internal/api/models"
)

func TestTimestamp_MarshalKeepsOffset(t *testing.T) {
	chicago := time.FixedZone("CDT", -5*3600)
	ts := models.Timestamp(time.Date(2025, 7, 3, 6, 15, 0, 0, chicago))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-07-03T06:15:00-05:00"`, string(data))
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"utc", `"2025-07-03T11:15:00Z"`, time.Date(2025, 7, 3, 11, 15, 0, 0, time.UTC), false},
		{"fractional", `"2025-07-03T11:15:00.250Z"`, time.Date(2025, 7, 3, 11, 15, 0, 250e6, time.UTC), false},
		{"not a string", `1751541300`, time.Time{}, true},
		{"not rfc3339", `"07/03/2025"`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts models.Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time()))
		})
	}
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var body struct {
		DayStart *models.Timestamp `json:"dayStart"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dayStart":null}`), &body))
	assert.Nil(t, body.DayStart)
}

func TestNewPagedResponseMeta(t *testing.T) {
	last := models.NewPagedResponseMeta(20, 0)
	assert.Equal(t, 20, last.Limit)
	assert.Nil(t, last.NextCursor)

	more := models.NewPagedResponseMeta(20, 41)
	require.NotNil(t, more.NextCursor)
	assert.Equal(t, "41", *more.NextCursor)
}

func TestTimestampPtr(t *testing.T) {
	assert.Nil(t, models.TimestampPtr(time.Time{}))

	now := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, models.TimestampPtr(now))
	assert.Equal(t, now, models.TimestampPtr(now).Time())
}
