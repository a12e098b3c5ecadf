package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/events"
)

func TestDispatcher_InvokesInRegistrationOrder(t *testing.T) {
	d := events.NewDispatcher()
	var order []int
	d.On(func(context.Context, *events.StateChangeEvent) error {
		order = append(order, 1)
		return nil
	})
	d.On(func(context.Context, *events.StateChangeEvent) error {
		order = append(order, 2)
		return nil
	})

	event := &events.StateChangeEvent{Job: &domain.Job{ID: 1}, OldState: domain.StateRunning, NewState: domain.StateFinished}
	require.NoError(t, d.Dispatch(context.Background(), event))
	assert.Equal(t, []int{1, 2}, order)
}

func TestDispatcher_StopsAtFirstError(t *testing.T) {
	d := events.NewDispatcher()
	boom := errors.New("boom")
	called2 := false
	d.On(func(context.Context, *events.StateChangeEvent) error { return boom })
	d.On(func(context.Context, *events.StateChangeEvent) error {
		called2 = true
		return nil
	})

	event := &events.StateChangeEvent{Job: &domain.Job{ID: 1}, OldState: domain.StateRunning, NewState: domain.StateFinished}
	err := d.Dispatch(context.Background(), event)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called2)
}

func TestDispatcher_ListenerCanDowngradeNewState(t *testing.T) {
	d := events.NewDispatcher()
	d.On(func(_ context.Context, e *events.StateChangeEvent) error {
		if e.NewState == domain.StateFinished {
			e.NewState = domain.StateIncomplete
		}
		return nil
	})

	event := &events.StateChangeEvent{Job: &domain.Job{ID: 1}, OldState: domain.StateRunning, NewState: domain.StateFinished}
	require.NoError(t, d.Dispatch(context.Background(), event))
	assert.Equal(t, domain.StateIncomplete, event.NewState)
}
