package realtime

import (
	"errors"
	"fmt"
	"time"
)

// ErrHubBackpressure is returned when the fan-out buffer is full and the
// event was dropped
var ErrHubBackpressure = errors.New("realtime: event dropped, fan-out buffer full")

// Event types published to community channels
const (
	EventMemberAdded       = "member_added"
	EventMemberRemoved     = "member_removed"
	EventAdminAdded        = "admin_added"
	EventAdminRemoved      = "admin_removed"
	EventChallengeCreated  = "challenge_created"
	EventChallengeDeleted  = "challenge_deleted"
	EventParticipantJoined = "participant_joined"
	EventParticipantExited = "participant_exited"
	EventCommunityDeleted  = "community_deleted"
)

// Event is a single notification pushed to every subscriber of a community
// channel.
type Event struct {
	// Channel the event is published on, e.g. "community_42"
	Channel string `json:"channel"`

	// Type of event, one of the Event* constants
	Type string `json:"type"`

	// Community the event belongs to
	CommunityID int64 `json:"communityId"`

	// Payload carries event-specific data
	Payload map[string]interface{} `json:"payload,omitempty"`

	// Timestamp when the event was published
	Timestamp time.Time `json:"timestamp"`
}

// ChannelForCommunity returns the channel name for a community
func ChannelForCommunity(communityID int64) string {
	return fmt.Sprintf("community_%d", communityID)
}

// Publisher delivers events to community channels. Delivery is best-effort;
// callers treat a returned error as non-fatal.
type Publisher interface {
	Publish(event *Event) error
}
