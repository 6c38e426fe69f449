package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusAssigned, StatusInProgress, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},

		// gap steps are rejected, not skipped
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusAssigned, StatusCompleted, false},

		// terminal states are frozen
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusAssigned, false},
		{StatusCompleted, StatusCompleted, false},

		// backwards never
		{StatusInProgress, StatusAssigned, false},
		{StatusAssigned, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAssigned.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}
