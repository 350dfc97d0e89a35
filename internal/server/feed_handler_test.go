package server_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed(t *testing.T) {
	engine, ctrl, _ := setup(t)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := gmset.NewClient(srv.Client(), websocket.DefaultDialer, srv.URL, accessKey(t, ctrl), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := client.Subscribe(ctx, "aaaaaa")
	require.NoError(t, err)
	defer sub.Close()

	next := func() gmset.Event {
		select {
		case event, ok := <-sub.Events():
			require.True(t, ok, "feed closed: %v", sub.Err())
			return event
		case <-ctx.Done():
			require.FailNow(t, "no event received")
		}
		return gmset.Event{}
	}

	other := gmset.NewItem("other", "bbbbbb", gmset.DefaultDefaults())
	require.NoError(t, client.InsertItem(ctx, other))

	item := gmset.NewItem("item-1", "aaaaaa", gmset.DefaultDefaults())
	item.Name = "Mew ex"
	require.NoError(t, client.InsertItem(ctx, item))

	owned := true
	require.NoError(t, client.UpdateItem(ctx, "other", gmset.Patch{Owned: &owned}))
	require.NoError(t, client.UpdateItem(ctx, "item-1", gmset.Patch{Owned: &owned}))
	require.NoError(t, client.DeleteItem(ctx, "other"))
	require.NoError(t, client.DeleteItem(ctx, "item-1"))

	event := next()
	assert.Equal(t, gmset.EventInserted, event.Kind)
	assert.Equal(t, "aaaaaa", event.CollectionID)
	assert.Equal(t, "item-1", event.ItemID)
	require.NotNil(t, event.Item)
	assert.Equal(t, "Mew ex", event.Item.Name)
	assert.NotEmpty(t, event.ID)

	event = next()
	assert.Equal(t, gmset.EventUpdated, event.Kind)
	require.NotNil(t, event.Item)
	assert.True(t, event.Item.Owned)

	event = next()
	assert.Equal(t, gmset.EventDeleted, event.Kind)
	assert.Equal(t, "item-1", event.ItemID)
	assert.Nil(t, event.Item)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Err())
}

func TestFeed_Unauthorized(t *testing.T) {
	engine, _, _ := setup(t)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	client, err := gmset.NewClient(srv.Client(), websocket.DefaultDialer, srv.URL, "forged", logrus.New())
	require.NoError(t, err)

	_, err = client.Subscribe(context.Background(), "aaaaaa")
	assert.True(t, gmset.IsUnauthorized(err))
}
