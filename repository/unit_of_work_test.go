package repository

import (
	"context"
	"testing"
	"time"

	"lotterypay/events"
	"lotterypay/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeTicketCreated, func(ctx context.Context, event events.Event) {
		received <- event
	})

	ticket := testutil.CreateTestTicket("uow@example.nl", 1)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.TicketRepository().Create(ctx, ticket))
	uow.EventBus().Publish(events.TicketCreatedEvent{TicketID: ticket.ID})
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	select {
	case event := <-received:
		assert.Equal(t, ticket.ID, event.(events.TicketCreatedEvent).TicketID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not flushed after commit")
	}

	stored, err := NewTicketRepository(testDB.DB).GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeTicketCreated, func(ctx context.Context, event events.Event) {
		delivered <- struct{}{}
	})

	ticket := testutil.CreateTestTicket("rollback@example.nl", 1)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.TicketRepository().Create(ctx, ticket))
	uow.EventBus().Publish(events.TicketCreatedEvent{TicketID: ticket.ID})
	require.NoError(t, uow.Rollback())

	select {
	case <-delivered:
		t.Fatal("event delivered after rollback")
	case <-time.After(100 * time.Millisecond):
	}

	stored, err := NewTicketRepository(testDB.DB).GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	t.Parallel()

	uow := NewUnitOfWorkFactory(nil, events.NewBus()).Create()
	assert.Panics(t, func() { uow.TicketRepository() })
	assert.Error(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}
