package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/followup/internal/model"
)

func TestDerive(t *testing.T) {
	ref := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		due  time.Time
		want model.Status
	}{
		{"due now", ref, model.StatusToday},
		{"within grace", ref.Add(-59 * time.Second), model.StatusToday},
		{"exactly at grace", ref.Add(-60 * time.Second), model.StatusToday},
		{"past grace", ref.Add(-61 * time.Second), model.StatusOverdue},
		{"yesterday", ref.AddDate(0, 0, -1), model.StatusOverdue},
		{"later today", time.Date(2024, 1, 10, 23, 59, 0, 0, time.Local), model.StatusToday},
		{"tomorrow", time.Date(2024, 1, 11, 0, 0, 0, 0, time.Local), model.StatusUpcoming},
		{"next year", ref.AddDate(1, 0, 0), model.StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.due, ref)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Derive(tt.due, ref))
		})
	}
}

func TestDeriveNeverCompleted(t *testing.T) {
	ref := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	for offset := -48 * time.Hour; offset <= 48*time.Hour; offset += 37 * time.Minute {
		got := Derive(ref.Add(offset), ref)
		assert.NotEqual(t, model.StatusCompleted, got)
		assert.True(t, got.Valid())
	}
}

func TestOf(t *testing.T) {
	ref := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	r := model.Reminder{DueEpoch: ref.Add(-time.Hour).UnixMilli()}

	assert.Equal(t, model.StatusOverdue, Of(r, ref))

	r.Status = model.StatusCompleted
	assert.Equal(t, model.StatusCompleted, Of(r, ref))
}
