package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

var (
	running = &models.WorkoutType{ID: 1, Name: "running", CaloriesPerMinute: 10, PointsPerMinute: 2}
	yoga    = &models.WorkoutType{ID: 2, Name: "yoga", CaloriesPerMinute: 3, PointsPerMinute: 1}
)

type challengeFixture struct {
	service      ChallengeService
	challenges   *fakeChallengeStore
	participants *fakeParticipantStore
	memberships  *fakeMembershipStore
	publisher    *fakePublisher
}

func newChallengeFixture() *challengeFixture {
	f := &challengeFixture{
		challenges:   newFakeChallengeStore(),
		participants: newFakeParticipantStore(),
		memberships:  newFakeMembershipStore(),
		publisher:    &fakePublisher{},
	}
	f.service = NewChallengeService(
		f.challenges,
		f.participants,
		newFakeWorkoutTypeStore(running, yoga),
		f.memberships,
		&fakeTxRunner{},
		f.publisher,
		zerolog.Nop(),
	)
	return f
}

// seedCommunity marks profile 1 as admin+member of community 1 and any
// additional profiles as plain members
func (f *challengeFixture) seedCommunity(memberIDs ...int64) {
	ctx := context.Background()
	_ = f.memberships.AddAdmin(ctx, nil, 1, 1)
	_ = f.memberships.AddMember(ctx, nil, 1, 1)
	for _, id := range memberIDs {
		_ = f.memberships.AddMember(ctx, nil, 1, id)
	}
}

func (f *challengeFixture) createChallenge(t *testing.T, start, end string, typeIDs ...int64) *dto.ChallengeResponse {
	t.Helper()
	startDate, err := time.Parse(dateLayout, start)
	require.NoError(t, err)
	endDate, err := time.Parse(dateLayout, end)
	require.NoError(t, err)

	resp, err := f.service.CreateChallenge(context.Background(), 1, 1, &dto.CreateChallengeRequest{
		Name:           "May Miles",
		StartDate:      startDate,
		EndDate:        endDate,
		WorkoutTypeIDs: typeIDs,
	})
	require.NoError(t, err)
	return resp
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, value)
	require.NoError(t, err)
	return d
}

func TestCreateChallengeRequiresAdmin(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)

	_, err := f.service.CreateChallenge(context.Background(), 2, 1, &dto.CreateChallengeRequest{
		Name:           "May Miles",
		StartDate:      day(t, "2026-05-01"),
		EndDate:        day(t, "2026-05-31"),
		WorkoutTypeIDs: []int64{running.ID},
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateChallengeRejectsInvertedDates(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity()

	_, err := f.service.CreateChallenge(context.Background(), 1, 1, &dto.CreateChallengeRequest{
		Name:           "Backwards",
		StartDate:      day(t, "2026-05-31"),
		EndDate:        day(t, "2026-05-01"),
		WorkoutTypeIDs: []int64{running.ID},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestCreateChallengeSingleDayRangeIsValid(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity()

	resp := f.createChallenge(t, "2026-05-01", "2026-05-01", running.ID)
	assert.Equal(t, "2026-05-01", resp.StartDate)
	assert.Equal(t, "2026-05-01", resp.EndDate)
}

func TestCreateChallengeUnknownWorkoutType(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity()

	_, err := f.service.CreateChallenge(context.Background(), 1, 1, &dto.CreateChallengeRequest{
		Name:           "May Miles",
		StartDate:      day(t, "2026-05-01"),
		EndDate:        day(t, "2026-05-31"),
		WorkoutTypeIDs: []int64{99},
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestJoinChallengeStartsAtZeroPoints(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)

	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	assert.Equal(t, 0.0, f.participants.pointsFor(resp.ID, 2))
	assert.Contains(t, f.publisher.eventTypes(), realtime.EventParticipantJoined)
}

func TestJoinChallengeTwiceConflicts(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)

	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))
	err := f.service.JoinChallenge(context.Background(), 2, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestJoinChallengeRequiresCommunityMembership(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity()
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)

	err := f.service.JoinChallenge(context.Background(), 9, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestExitChallengeNotAParticipant(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)

	err := f.service.ExitChallenge(context.Background(), 2, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestApplyWorkoutCreditsExactDelta(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	// 30 minutes of running at 2 points per minute
	err := f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-05-10"), 60)
	require.NoError(t, err)

	assert.Equal(t, 60.0, f.participants.pointsFor(resp.ID, 2))
}

func TestApplyWorkoutSkipsNonParticipants(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2, 3)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	// Profile 3 never joined; its workout must not enroll it
	err := f.service.ApplyWorkout(context.Background(), nil, 3, running.ID, day(t, "2026-05-10"), 40)
	require.NoError(t, err)

	assert.Equal(t, 0.0, f.participants.pointsFor(resp.ID, 3))
	participants, err := f.participants.ListByChallenge(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestApplyWorkoutIgnoresOutOfWindowDates(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-04-30"), 10))
	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-06-01"), 10))
	assert.Equal(t, 0.0, f.participants.pointsFor(resp.ID, 2))

	// Both bounds are inclusive
	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-05-01"), 10))
	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-05-31"), 10))
	assert.Equal(t, 20.0, f.participants.pointsFor(resp.ID, 2))
}

func TestApplyWorkoutIgnoresOtherWorkoutTypes(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, yoga.ID, day(t, "2026-05-10"), 15))
	assert.Equal(t, 0.0, f.participants.pointsFor(resp.ID, 2))
}

func TestApplyWorkoutCreditsAllQualifyingChallenges(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	first := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	second := f.createChallenge(t, "2026-05-01", "2026-06-30", running.ID, yoga.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, first.ID))
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, second.ID))

	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-05-10"), 25))

	assert.Equal(t, 25.0, f.participants.pointsFor(first.ID, 2))
	assert.Equal(t, 25.0, f.participants.pointsFor(second.ID, 2))
}

func TestStandingsOrderedByPoints(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2, 3)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))
	require.NoError(t, f.service.JoinChallenge(context.Background(), 3, resp.ID))

	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, day(t, "2026-05-10"), 30))
	require.NoError(t, f.service.ApplyWorkout(context.Background(), nil, 3, running.ID, day(t, "2026-05-10"), 50))

	detail, err := f.service.GetChallenge(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 2)

	byProfile := map[int64]float64{}
	for _, p := range detail.Participants {
		byProfile[p.ID] = p.Points
	}
	assert.Equal(t, 30.0, byProfile[2])
	assert.Equal(t, 50.0, byProfile[3])
}

func TestDeleteChallengeRequiresCommunityAdmin(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)

	err := f.service.DeleteChallenge(context.Background(), 2, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, f.service.DeleteChallenge(context.Background(), 1, resp.ID))
	_, err = f.service.GetChallenge(context.Background(), resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Contains(t, f.publisher.eventTypes(), realtime.EventChallengeDeleted)
}

func TestConcurrentApplyWorkoutLosesNoUpdates(t *testing.T) {
	f := newChallengeFixture()
	f.seedCommunity(2)
	resp := f.createChallenge(t, "2026-05-01", "2026-05-31", running.ID)
	require.NoError(t, f.service.JoinChallenge(context.Background(), 2, resp.ID))

	const workers = 50
	workoutDate := day(t, "2026-05-10")
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			done <- f.service.ApplyWorkout(context.Background(), nil, 2, running.ID, workoutDate, 2)
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}

	assert.Equal(t, float64(workers*2), f.participants.pointsFor(resp.ID, 2))
}
