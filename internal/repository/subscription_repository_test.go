package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionWindowFreshStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	start, end := SubscriptionWindow(now, nil, 30)
	assert.Equal(t, now, start)
	assert.Equal(t, now.AddDate(0, 0, 30), end)
}

func TestSubscriptionWindowStacksOntoFutureEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := now.AddDate(0, 0, 10)

	start, end := SubscriptionWindow(now, &existing, 30)
	assert.Equal(t, now, start)
	// The purchased month begins where the current one ends.
	assert.Equal(t, existing.AddDate(0, 0, 30), end)
}

func TestSubscriptionWindowIgnoresLapsedEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lapsed := now.AddDate(0, 0, -5)

	start, end := SubscriptionWindow(now, &lapsed, 365)
	assert.Equal(t, now, start)
	assert.Equal(t, now.AddDate(0, 0, 365), end)
}
