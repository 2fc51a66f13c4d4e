package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

type membershipFixture struct {
	service     MembershipService
	communities *fakeCommunityStore
	memberships *fakeMembershipStore
	profiles    *fakeProfileStore
	files       *fakeFileStore
	storage     *fakeStorage
	publisher   *fakePublisher
}

func newMembershipFixture() *membershipFixture {
	f := &membershipFixture{
		communities: newFakeCommunityStore(),
		memberships: newFakeMembershipStore(),
		profiles:    newFakeProfileStore(),
		files:       newFakeFileStore(),
		storage:     &fakeStorage{},
		publisher:   &fakePublisher{},
	}
	f.service = NewMembershipService(
		f.communities,
		f.memberships,
		f.profiles,
		f.files,
		f.storage,
		&fakeTxRunner{},
		f.publisher,
		zerolog.Nop(),
	)
	return f
}

func (f *membershipFixture) createCommunity(t *testing.T, creator int64) *dto.CommunityResponse {
	t.Helper()
	resp, err := f.service.CreateCommunity(context.Background(), creator,
		&dto.CreateCommunityRequest{Name: "Runners"}, nil)
	require.NoError(t, err)
	return resp
}

func TestCreateCommunityPutsCreatorInBothRoles(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")

	resp := f.createCommunity(t, creator.ID)

	isAdmin, _ := f.memberships.IsAdmin(context.Background(), resp.ID, creator.ID)
	isMember, _ := f.memberships.IsMember(context.Background(), resp.ID, creator.ID)
	assert.True(t, isAdmin, "creator should be an admin")
	assert.True(t, isMember, "creator should be a member")
}

func TestCreateCommunityJoinCodeShape(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")

	resp := f.createCommunity(t, creator.ID)

	require.Len(t, resp.JoinCode, 6)
	for _, r := range resp.JoinCode {
		ok := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, ok, "join code must be uppercase alphanumeric, got %q", r)
	}
}

func TestCreateCommunityRetriesOnJoinCodeCollision(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")

	// First two inserts collide, the third sticks
	f.communities.collideFirst = 2

	resp := f.createCommunity(t, creator.ID)
	assert.Len(t, resp.JoinCode, 6)
}

func TestCreateCommunityGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")

	f.communities.collideFirst = joinCodeAttempts

	_, err := f.service.CreateCommunity(context.Background(), creator.ID,
		&dto.CreateCommunityRequest{Name: "Runners"}, nil)
	assert.Error(t, err)
}

func TestJoinCodeNeverChanges(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	joiner := f.profiles.add("bob")

	resp := f.createCommunity(t, creator.ID)
	code := resp.JoinCode

	_, err := f.service.JoinByCode(context.Background(), joiner.ID, code)
	require.NoError(t, err)

	community, err := f.service.GetCommunity(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, code, community.JoinCode)
}

func TestJoinByCodeUnknownCode(t *testing.T) {
	f := newMembershipFixture()
	joiner := f.profiles.add("bob")

	_, err := f.service.JoinByCode(context.Background(), joiner.ID, "ZZZZZZ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestJoinByCodeTwiceConflicts(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	joiner := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), joiner.ID, resp.JoinCode)
	require.NoError(t, err)

	_, err = f.service.JoinByCode(context.Background(), joiner.ID, resp.JoinCode)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRemovedMemberCannotRejoinByCode(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	require.NoError(t, err)

	require.NoError(t, f.service.RemoveMember(context.Background(), creator.ID, resp.ID, member.ID))

	// The ban holds no matter how often the code is tried
	for i := 0; i < 3; i++ {
		_, err = f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}
}

func TestAdminMayReAddRemovedMember(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	require.NoError(t, err)
	require.NoError(t, f.service.RemoveMember(context.Background(), creator.ID, resp.ID, member.ID))

	// Explicit re-add by an admin bypasses the join-code ban
	require.NoError(t, f.service.AddMember(context.Background(), creator.ID, resp.ID, "bob"))

	isMember, _ := f.memberships.IsMember(context.Background(), resp.ID, member.ID)
	assert.True(t, isMember)

	// The ban on the code path is still in place after the membership is
	// dropped again
	require.NoError(t, f.service.ExitCommunity(context.Background(), member.ID, resp.ID))
	_, err = f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestVoluntaryExitAllowsRejoin(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	require.NoError(t, err)

	require.NoError(t, f.service.ExitCommunity(context.Background(), member.ID, resp.ID))

	_, err = f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	assert.NoError(t, err, "a voluntary exit must not ban re-joining")
}

func TestRemoveMemberRejectsAdmins(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	other := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	require.NoError(t, f.service.AddAdmin(context.Background(), creator.ID, resp.ID, other.ID))

	err := f.service.RemoveMember(context.Background(), creator.ID, resp.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// State unchanged: still admin, still member, no ban
	isAdmin, _ := f.memberships.IsAdmin(context.Background(), resp.ID, other.ID)
	isMember, _ := f.memberships.IsMember(context.Background(), resp.ID, other.ID)
	wasRemoved, _ := f.memberships.WasRemoved(context.Background(), resp.ID, other.ID)
	assert.True(t, isAdmin)
	assert.True(t, isMember)
	assert.False(t, wasRemoved)
}

func TestAddAdminRequiresActingAdmin(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	outsider := f.profiles.add("mallory")
	target := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	err := f.service.AddAdmin(context.Background(), outsider.ID, resp.ID, target.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAddAdminTwiceConflicts(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	target := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	require.NoError(t, f.service.AddAdmin(context.Background(), creator.ID, resp.ID, target.ID))
	err := f.service.AddAdmin(context.Background(), creator.ID, resp.ID, target.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRemoveAdminIsNoOpSafe(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	target := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	before := len(f.publisher.eventTypes())
	err := f.service.RemoveAdmin(context.Background(), creator.ID, resp.ID, target.ID)
	assert.NoError(t, err)
	assert.Len(t, f.publisher.eventTypes(), before, "no event for a no-op demotion")
}

func TestMembershipEventsPublishedAfterMutations(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	require.NoError(t, err)
	require.NoError(t, f.service.RemoveMember(context.Background(), creator.ID, resp.ID, member.ID))

	types := f.publisher.eventTypes()
	assert.Contains(t, types, realtime.EventMemberAdded)
	assert.Contains(t, types, realtime.EventMemberRemoved)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newMembershipFixture()
	f.publisher.err = realtime.ErrHubBackpressure
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	assert.NoError(t, err, "fan-out failures must never surface to the caller")
}

func TestDeleteCommunityRequiresAdmin(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")
	member := f.profiles.add("bob")
	resp := f.createCommunity(t, creator.ID)

	_, err := f.service.JoinByCode(context.Background(), member.ID, resp.JoinCode)
	require.NoError(t, err)

	err = f.service.DeleteCommunity(context.Background(), member.ID, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, f.service.DeleteCommunity(context.Background(), creator.ID, resp.ID))
	_, err = f.service.GetCommunity(context.Background(), resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	assert.Contains(t, f.publisher.eventTypes(), realtime.EventCommunityDeleted)
}

func TestDeleteCommunityCleansUpAvatar(t *testing.T) {
	f := newMembershipFixture()
	creator := f.profiles.add("alice")

	resp, err := f.service.CreateCommunity(context.Background(), creator.ID,
		&dto.CreateCommunityRequest{Name: "Runners"}, pngFileHeader(t))
	require.NoError(t, err)
	require.Len(t, f.storage.saved, 1)

	require.NoError(t, f.service.DeleteCommunity(context.Background(), creator.ID, resp.ID))
	assert.Equal(t, f.storage.saved, f.storage.deleted)
}
