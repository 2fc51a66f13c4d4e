package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/filestorage"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

// pair keys membership and participation maps
type pair struct {
	left  int64
	right int64
}

func uniqueViolation(constraint string) error {
	return fmt.Errorf("error executing query: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: constraint,
	})
}

// fakeTxRunner runs the callback without a real transaction
type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

// fakePublisher records published events
type fakePublisher struct {
	mu     sync.Mutex
	events []*realtime.Event
	err    error
}

func (f *fakePublisher) Publish(event *realtime.Event) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

// fakeStorage records save and delete calls without touching disk
type fakeStorage struct {
	saved   []string
	deleted []string
	saveErr error
	nextID  int
}

func (f *fakeStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (*filestorage.StoredFile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	path := fmt.Sprintf("%s/file-%d.png", subPath, f.nextID)
	f.saved = append(f.saved, path)
	return &filestorage.StoredFile{
		Path:     path,
		URL:      "http://files.local/" + path,
		Filename: fileHeader.Filename,
		FileSize: fileHeader.Size,
		MimeType: "image/png",
	}, nil
}

func (f *fakeStorage) DeleteFile(filePath string) error {
	f.deleted = append(f.deleted, filePath)
	return nil
}

func (f *fakeStorage) FullPath(filePath string) string {
	return "/storage/" + filePath
}

// fakeUserStore implements userStore in memory
type fakeUserStore struct {
	nextID int64
	byName map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byName: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error) {
	if _, exists := f.byName[user.Username]; exists {
		return 0, uniqueViolation("users_username_key")
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.byName[user.Username] = user
	return user.ID, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.byName[username], nil
}

func (f *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := f.byName[username]
	return ok, nil
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.byName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// fakeProfileStore implements profileStore in memory
type fakeProfileStore struct {
	nextID int64
	byID   map[int64]*models.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{byID: make(map[int64]*models.Profile)}
}

func (f *fakeProfileStore) add(username string) *models.Profile {
	f.nextID++
	profile := &models.Profile{
		ID:     f.nextID,
		UserID: f.nextID,
		User:   &models.User{ID: f.nextID, Username: username},
	}
	f.byID[profile.ID] = profile
	return profile
}

func (f *fakeProfileStore) Create(ctx context.Context, tx pgx.Tx, profile *models.Profile) (int64, error) {
	f.nextID++
	profile.ID = f.nextID
	f.byID[profile.ID] = profile
	return profile.ID, nil
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return f.byID[id], nil
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	for _, p := range f.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileStore) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	for _, p := range f.byID {
		if p.User != nil && p.User.Username == username {
			return p, nil
		}
	}
	return nil, nil
}

// fakeFileStore implements fileStore in memory
type fakeFileStore struct {
	nextID  int64
	byID    map[int64]*models.File
	deleted []int64
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{byID: make(map[int64]*models.File)}
}

func (f *fakeFileStore) Create(ctx context.Context, tx pgx.Tx, file *models.File) (int64, error) {
	f.nextID++
	file.ID = f.nextID
	f.byID[file.ID] = file
	return file.ID, nil
}

func (f *fakeFileStore) GetByID(ctx context.Context, id int64) (*models.File, error) {
	return f.byID[id], nil
}

func (f *fakeFileStore) Delete(ctx context.Context, id int64) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeCommunityStore implements communityStore in memory
type fakeCommunityStore struct {
	nextID     int64
	byID       map[int64]*models.Community
	takenCodes map[string]bool

	// collideFirst makes the next N creates fail with a join-code
	// unique violation
	collideFirst int
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		byID:       make(map[int64]*models.Community),
		takenCodes: make(map[string]bool),
	}
}

func (f *fakeCommunityStore) Create(ctx context.Context, tx pgx.Tx, community *models.Community) (int64, error) {
	if f.collideFirst > 0 {
		f.collideFirst--
		return 0, uniqueViolation("communities_join_code_key")
	}
	if f.takenCodes[community.JoinCode] {
		return 0, uniqueViolation("communities_join_code_key")
	}
	f.nextID++
	community.ID = f.nextID
	community.CreatedAt = time.Now()
	stored := *community
	f.byID[community.ID] = &stored
	f.takenCodes[community.JoinCode] = true
	return community.ID, nil
}

func (f *fakeCommunityStore) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	return f.byID[id], nil
}

func (f *fakeCommunityStore) GetByJoinCode(ctx context.Context, code string) (*models.Community, error) {
	for _, c := range f.byID {
		if c.JoinCode == code {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCommunityStore) GetAll(ctx context.Context, profileID int64) ([]*models.Community, error) {
	var out []*models.Community
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCommunityStore) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("community not found with ID %d", id)
	}
	delete(f.byID, id)
	return nil
}

// fakeMembershipStore implements membershipStore in memory
type fakeMembershipStore struct {
	members map[pair]bool
	admins  map[pair]bool
	removed map[pair]bool
}

func newFakeMembershipStore() *fakeMembershipStore {
	return &fakeMembershipStore{
		members: make(map[pair]bool),
		admins:  make(map[pair]bool),
		removed: make(map[pair]bool),
	}
}

func (f *fakeMembershipStore) AddMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	key := pair{communityID, profileID}
	if f.members[key] {
		return uniqueViolation("community_members_pkey")
	}
	f.members[key] = true
	return nil
}

func (f *fakeMembershipStore) AddAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	key := pair{communityID, profileID}
	if f.admins[key] {
		return uniqueViolation("community_admins_pkey")
	}
	f.admins[key] = true
	return nil
}

func (f *fakeMembershipStore) RemoveMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error) {
	key := pair{communityID, profileID}
	if !f.members[key] {
		return false, nil
	}
	delete(f.members, key)
	return true, nil
}

func (f *fakeMembershipStore) RemoveAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error) {
	key := pair{communityID, profileID}
	if !f.admins[key] {
		return false, nil
	}
	delete(f.admins, key)
	return true, nil
}

func (f *fakeMembershipStore) IsMember(ctx context.Context, communityID, profileID int64) (bool, error) {
	return f.members[pair{communityID, profileID}], nil
}

func (f *fakeMembershipStore) IsAdmin(ctx context.Context, communityID, profileID int64) (bool, error) {
	return f.admins[pair{communityID, profileID}], nil
}

func (f *fakeMembershipStore) WasRemoved(ctx context.Context, communityID, profileID int64) (bool, error) {
	return f.removed[pair{communityID, profileID}], nil
}

func (f *fakeMembershipStore) RecordRemoval(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	f.removed[pair{communityID, profileID}] = true
	return nil
}

func (f *fakeMembershipStore) ListMembers(ctx context.Context, communityID int64) ([]*models.Profile, error) {
	return f.list(f.members, communityID), nil
}

func (f *fakeMembershipStore) ListAdmins(ctx context.Context, communityID int64) ([]*models.Profile, error) {
	return f.list(f.admins, communityID), nil
}

func (f *fakeMembershipStore) list(set map[pair]bool, communityID int64) []*models.Profile {
	var out []*models.Profile
	for key := range set {
		if key.left == communityID {
			out = append(out, &models.Profile{ID: key.right, User: &models.User{ID: key.right}})
		}
	}
	return out
}

// fakeChallengeStore implements challengeStore in memory
type fakeChallengeStore struct {
	nextID int64
	byID   map[int64]*models.Challenge
	types  map[int64][]int64
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{
		byID:  make(map[int64]*models.Challenge),
		types: make(map[int64][]int64),
	}
}

func (f *fakeChallengeStore) Create(ctx context.Context, tx pgx.Tx, challenge *models.Challenge) (int64, error) {
	f.nextID++
	challenge.ID = f.nextID
	challenge.CreatedAt = time.Now()
	f.byID[challenge.ID] = challenge
	return challenge.ID, nil
}

func (f *fakeChallengeStore) AttachWorkoutTypes(ctx context.Context, tx pgx.Tx, challengeID int64, workoutTypeIDs []int64) error {
	f.types[challengeID] = append(f.types[challengeID], workoutTypeIDs...)
	return nil
}

func (f *fakeChallengeStore) GetByID(ctx context.Context, id int64) (*models.Challenge, error) {
	return f.byID[id], nil
}

func (f *fakeChallengeStore) ListByCommunity(ctx context.Context, communityID int64) ([]*models.Challenge, error) {
	var out []*models.Challenge
	for _, c := range f.byID {
		if c.CommunityID == communityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChallengeStore) ListQualifying(ctx context.Context, tx pgx.Tx, workoutTypeID int64, workoutDate time.Time) ([]*models.Challenge, error) {
	var out []*models.Challenge
	for _, c := range f.byID {
		if workoutDate.Before(c.StartDate) || workoutDate.After(c.EndDate) {
			continue
		}
		for _, wt := range f.types[c.ID] {
			if wt == workoutTypeID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeChallengeStore) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("challenge not found with ID %d", id)
	}
	delete(f.byID, id)
	delete(f.types, id)
	return nil
}

// fakeParticipantStore implements participantStore in memory. Guarded by a
// mutex so concurrency tests can hammer IncrementPoints.
type fakeParticipantStore struct {
	mu     sync.Mutex
	points map[pair]float64
	joined map[pair]time.Time
}

func newFakeParticipantStore() *fakeParticipantStore {
	return &fakeParticipantStore{
		points: make(map[pair]float64),
		joined: make(map[pair]time.Time),
	}
}

func (f *fakeParticipantStore) Add(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pair{challengeID, profileID}
	if _, ok := f.points[key]; ok {
		return uniqueViolation("challenge_participants_challenge_id_profile_id_key")
	}
	f.points[key] = 0
	f.joined[key] = time.Now()
	return nil
}

func (f *fakeParticipantStore) Remove(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pair{challengeID, profileID}
	if _, ok := f.points[key]; !ok {
		return false, nil
	}
	delete(f.points, key)
	delete(f.joined, key)
	return true, nil
}

func (f *fakeParticipantStore) ListByChallenge(ctx context.Context, challengeID int64) ([]*models.ChallengeParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ChallengeParticipant
	for key, points := range f.points {
		if key.left == challengeID {
			out = append(out, &models.ChallengeParticipant{
				ChallengeID: challengeID,
				ProfileID:   key.right,
				Points:      points,
				JoinedAt:    f.joined[key],
			})
		}
	}
	return out, nil
}

func (f *fakeParticipantStore) IncrementPoints(ctx context.Context, tx pgx.Tx, challengeID, profileID int64, delta float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pair{challengeID, profileID}
	if _, ok := f.points[key]; !ok {
		return false, nil
	}
	f.points[key] += delta
	return true, nil
}

func (f *fakeParticipantStore) pointsFor(challengeID, profileID int64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.points[pair{challengeID, profileID}]
}

// fakeWorkoutTypeStore implements workoutTypeStore in memory
type fakeWorkoutTypeStore struct {
	byID map[int64]*models.WorkoutType
}

func newFakeWorkoutTypeStore(types ...*models.WorkoutType) *fakeWorkoutTypeStore {
	f := &fakeWorkoutTypeStore{byID: make(map[int64]*models.WorkoutType)}
	for _, wt := range types {
		f.byID[wt.ID] = wt
	}
	return f
}

func (f *fakeWorkoutTypeStore) GetByID(ctx context.Context, id int64) (*models.WorkoutType, error) {
	return f.byID[id], nil
}

func (f *fakeWorkoutTypeStore) GetAll(ctx context.Context) ([]*models.WorkoutType, error) {
	var out []*models.WorkoutType
	for _, wt := range f.byID {
		out = append(out, wt)
	}
	return out, nil
}

func (f *fakeWorkoutTypeStore) ExistAll(ctx context.Context, ids []int64) (bool, error) {
	for _, id := range ids {
		if _, ok := f.byID[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// fakeWorkoutStore implements workoutStore in memory
type fakeWorkoutStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Workout
}

func newFakeWorkoutStore() *fakeWorkoutStore {
	return &fakeWorkoutStore{byID: make(map[int64]*models.Workout)}
}

func (f *fakeWorkoutStore) Create(ctx context.Context, tx pgx.Tx, workout *models.Workout) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	workout.ID = f.nextID
	workout.CreatedAt = time.Now()
	stored := *workout
	f.byID[workout.ID] = &stored
	return workout.ID, nil
}

func (f *fakeWorkoutStore) GetByID(ctx context.Context, id int64) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeWorkoutStore) ListByProfile(ctx context.Context, profileID int64, limit, offset uint64) ([]*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Workout
	for _, w := range f.byID {
		if w.ProfileID == profileID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= uint64(len(out)) {
		return nil, nil
	}
	out = out[offset:]
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWorkoutStore) CountByProfile(ctx context.Context, profileID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, w := range f.byID {
		if w.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

func (f *fakeWorkoutStore) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("workout not found with ID %d", id)
	}
	delete(f.byID, id)
	return nil
}
