package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmployee_JoinedBy(t *testing.T) {
	joined := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e := Employee{JoinedAt: &joined}

	assert.False(t, e.JoinedBy(joined.AddDate(0, 0, -1)))
	assert.True(t, e.JoinedBy(joined))
	assert.True(t, e.JoinedBy(joined.AddDate(0, 0, 1)))
	assert.True(t, Employee{}.JoinedBy(joined))
}
