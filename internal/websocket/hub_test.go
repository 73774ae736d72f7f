package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClient(hub *Hub, username string, buffer int) *Client {
	return &Client{hub: hub, username: username, send: make(chan []byte, buffer)}
}

func startHub(t *testing.T, rdb *redis.Client) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(rdb, logger.NewNopLogger())
	require.NoError(t, hub.Start(ctx))
	return hub
}

func receive(t *testing.T, c *Client) Notification {
	t.Helper()
	select {
	case raw := <-c.send:
		var n Notification
		require.NoError(t, json.Unmarshal(raw, &n))
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
		return Notification{}
	}
}

func TestHubDeliversOnlyToTargetUser(t *testing.T) {
	hub := startHub(t, nil)
	alice := fakeClient(hub, "alice", 4)
	aliceTab := fakeClient(hub, "alice", 4)
	bob := fakeClient(hub, "bob", 4)
	hub.Register(alice)
	hub.Register(aliceTab)
	hub.Register(bob)
	require.Eventually(t, func() bool { return hub.Connections("alice") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.NewVectorStoreReady("alice", "data/alice/vectorStore", 7)))

	n := receive(t, alice)
	assert.Equal(t, events.VectorStoreReadyType, n.Type)
	assert.EqualValues(t, 7, n.Data["chunks"])
	assert.Equal(t, events.VectorStoreReadyType, receive(t, aliceTab).Type)
	assert.Empty(t, bob.send)
}

func TestHubIgnoresEventsWithoutUser(t *testing.T) {
	hub := startHub(t, nil)
	assert.NoError(t, hub.Publish(context.Background(), events.BaseEvent{Type: "OTHER"}))
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := startHub(t, nil)
	slow := fakeClient(hub, "alice", 0)
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.NewVectorStoreFailed("alice", errors.New("boom"))))

	assert.Zero(t, hub.Connections("alice"))
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHubUnregisterClosesSendOnce(t *testing.T) {
	hub := startHub(t, nil)
	c := fakeClient(hub, "alice", 1)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)
}

func TestHubRelaysAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}

	publisherHub := startHub(t, newClient())
	receiverHub := startHub(t, newClient())

	c := fakeClient(receiverHub, "alice", 4)
	receiverHub.Register(c)
	require.Eventually(t, func() bool { return receiverHub.Connections("alice") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, publisherHub.Publish(context.Background(), events.NewVectorStoreReady("alice", "p", 2)))

	assert.Equal(t, events.VectorStoreReadyType, receive(t, c).Type)
}
