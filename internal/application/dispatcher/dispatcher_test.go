package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdesk/internal/domain/event"
)

func TestDispatchRunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	d.SubscribeNamed(event.TypeProjectCreated, "first", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeProjectCreated, "second", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "second")
		return nil
	})

	evt := event.New(event.TypeProjectCreated, "p1", "p1", "u1", nil)
	require.NoError(t, d.Dispatch(context.Background(), evt))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatchIsolatesHandlerFailures(t *testing.T) {
	d := NewDispatcher()
	var ran bool

	d.SubscribeNamed(event.TypeInvoiceApproved, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("notification insert failed")
	})
	d.SubscribeNamed(event.TypeInvoiceApproved, "panicking", func(ctx context.Context, evt *event.Event) error {
		panic("boom")
	})
	d.SubscribeNamed(event.TypeInvoiceApproved, "surviving", func(ctx context.Context, evt *event.Event) error {
		ran = true
		return nil
	})

	evt := event.New(event.TypeInvoiceApproved, "inv1", "p1", "u1", nil)
	err := d.Dispatch(context.Background(), evt)

	require.NoError(t, err, "handler failures must never surface to the caller")
	assert.True(t, ran, "later handlers still run after a failure")
}

func TestDispatchOnlyMatchingType(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32

	d.Subscribe(event.TypeTimesheetApproved, func(ctx context.Context, evt *event.Event) error {
		count.Add(1)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), event.New(event.TypeTimesheetRejected, "t1", "p1", "u1", nil)))
	assert.Equal(t, int32(0), count.Load())

	require.NoError(t, d.Dispatch(context.Background(), event.New(event.TypeTimesheetApproved, "t1", "p1", "u1", nil)))
	assert.Equal(t, int32(1), count.Load())
}

func TestClosedDispatcherRejectsDispatch(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Close())

	err := d.Dispatch(context.Background(), event.New(event.TypeProjectCreated, "p1", "p1", "u1", nil))
	assert.Error(t, err)
}

func TestListHandlers(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeProjectCreated, "audit", func(ctx context.Context, evt *event.Event) error { return nil })
	d.SubscribeNamed(event.TypeProjectCreated, "chat-provision", func(ctx context.Context, evt *event.Event) error { return nil })

	infos := d.ListHandlers(event.TypeProjectCreated)
	require.Len(t, infos, 2)
	assert.Equal(t, "audit", infos[0].Name)
	assert.Equal(t, "chat-provision", infos[1].Name)
}

func TestEventPayloadString(t *testing.T) {
	evt := event.New(event.TypeProjectCreated, "p1", "p1", "u1", map[string]interface{}{
		"project_name": "Atrium fit-out",
		"progress":     10,
	})

	assert.Equal(t, "Atrium fit-out", evt.PayloadString("project_name"))
	assert.Equal(t, "", evt.PayloadString("progress"), "non-string values read as empty")
	assert.Equal(t, "", evt.PayloadString("missing"))
}
