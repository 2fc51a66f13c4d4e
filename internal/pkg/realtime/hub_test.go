package realtime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestChannelForCommunity(t *testing.T) {
	assert.Equal(t, "community_42", ChannelForCommunity(42))
}

func TestPublishFillsDefaults(t *testing.T) {
	hub := newTestHub()

	event := &Event{Type: EventMemberAdded, CommunityID: 7}
	require.NoError(t, hub.Publish(event))

	assert.Equal(t, "community_7", event.Channel)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublishBackpressure(t *testing.T) {
	hub := newTestHub()

	// Nothing drains the broadcast buffer, so it eventually fills
	var err error
	for i := 0; i < cap(hub.broadcast)+1; i++ {
		err = hub.Publish(&Event{Type: EventChallengeCreated, CommunityID: 1})
		if err != nil {
			break
		}
	}

	assert.ErrorIs(t, err, ErrHubBackpressure)
}

func TestFanOutDeliversToSubscribedCommunityOnly(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	subscribed := &Client{hub: hub, send: make(chan []byte, 4), profileID: 1, communityID: 10}
	other := &Client{hub: hub, send: make(chan []byte, 4), profileID: 2, communityID: 20}
	hub.register <- subscribed
	hub.register <- other

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(10) == 1 && hub.SubscriberCount(20) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(&Event{Type: EventParticipantJoined, CommunityID: 10}))

	select {
	case data := <-subscribed.send:
		assert.Contains(t, string(data), EventParticipantJoined)
		assert.Contains(t, string(data), "community_10")
	case <-time.After(time.Second):
		t.Fatal("subscribed client received no event")
	}

	select {
	case <-other.send:
		t.Fatal("client of another community received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 4), profileID: 1, communityID: 5}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(5) == 1
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- client

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(5) == 0
	}, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send channel should be closed after unregister")
}
