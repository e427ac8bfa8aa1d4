package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoConcluder_Sweep(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(t)
	e := f.create(t, 4)
	f.svc.(*eventService).now = func() time.Time { return e.StartsAt.Add(48 * time.Hour) }

	a, err := NewAutoConcluder(f.svc, 24*time.Hour, time.Hour, discardLogger())
	require.NoError(t, err)
	defer func() { _ = a.Shutdown() }()

	a.Sweep(ctx)
	assert.True(t, f.events.byID[e.ID].IsConcluded())
	assert.Contains(t, f.publisher.queues(), "reputation_event_concluded")
}
