package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockIsUTC(t *testing.T) {
	now := SystemClock{}.Now(context.Background())
	assert.Equal(t, time.UTC, now.Location())
}

func TestFixed(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, Fixed(at).Now(context.Background()))
}
