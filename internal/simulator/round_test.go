package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundQuarter(t *testing.T) {
	base := time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		minutes int
		want    time.Time
	}{
		{0, base},
		{7, base},
		{8, base.Add(15 * time.Minute)},
		{22, base.Add(15 * time.Minute)},
		{23, base.Add(30 * time.Minute)},
		{52, base.Add(45 * time.Minute)},
		{53, base.Add(time.Hour)},
		{59, base.Add(time.Hour)},
	}

	for _, tt := range tests {
		got := roundQuarter(base.Add(time.Duration(tt.minutes) * time.Minute))
		assert.Equal(t, tt.want, got, "minute %d", tt.minutes)
	}
}

func TestRoundQuarter_CrossesMidnight(t *testing.T) {
	late := time.Date(2025, 7, 3, 23, 55, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), roundQuarter(late))
}
