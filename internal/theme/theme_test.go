package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/followup/internal/model"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "OVERDUE", StatusLabel(model.StatusOverdue))
	assert.Equal(t, "TODAY", StatusLabel(model.StatusToday))
	assert.Equal(t, "UPCOMING", StatusLabel(model.StatusUpcoming))
	assert.Equal(t, "DONE", StatusLabel(model.StatusCompleted))
	assert.Equal(t, "weird", StatusLabel(model.Status("weird")))
}

func TestStatusStyleRendersText(t *testing.T) {
	for _, s := range []model.Status{model.StatusOverdue, model.StatusToday, model.StatusUpcoming, model.StatusCompleted} {
		assert.Contains(t, StatusStyle(s).Render(StatusLabel(s)), StatusLabel(s))
	}
}

func TestBar(t *testing.T) {
	assert.Empty(t, Bar(0, 5, 10))
	assert.Empty(t, Bar(3, 0, 10))
	assert.Equal(t, 10, strings.Count(Bar(5, 5, 10), "█"))
	assert.Equal(t, 1, strings.Count(Bar(1, 100, 10), "█"))
	assert.Equal(t, 4, strings.Count(Bar(2, 5, 10), "█"))
}
