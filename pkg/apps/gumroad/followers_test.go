package gumroad

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubStore struct {
	nextID    int64
	followers map[string]int64
	audience  map[string]int64
	unfollows map[int64]bool
	cleared   map[string]bool
	failEmail string
}

func newStubStore() *stubStore {
	return &stubStore{
		followers: map[string]int64{},
		audience:  map[string]int64{},
		unfollows: map[int64]bool{},
		cleared:   map[string]bool{},
	}
}

func (s *stubStore) FollowerID(ctx context.Context, sellerID int64, email string) (int64, bool, error) {
	id, ok := s.followers[email]
	return id, ok, nil
}

func (s *stubStore) AudienceMemberExists(ctx context.Context, sellerID int64, email string) (bool, error) {
	_, ok := s.audience[email]
	return ok, nil
}

func (s *stubStore) InsertFollower(ctx context.Context, f FollowerRow) (int64, error) {
	if f.Email == s.failEmail {
		return 0, fmt.Errorf("duplicate key")
	}
	s.nextID++
	s.followers[f.Email] = s.nextID
	return s.nextID, nil
}

func (s *stubStore) InsertAudienceMember(ctx context.Context, m AudienceMemberRow) error {
	s.audience[m.Email] = m.FollowerID
	return nil
}

func (s *stubStore) MarkUnfollowed(ctx context.Context, followerID int64, deletedAt, updatedAt string) error {
	s.unfollows[followerID] = true
	return nil
}

func (s *stubStore) ClearFollowerFlag(ctx context.Context, sellerID int64, email, updatedAt string) error {
	s.cleared[email] = true
	return nil
}

func TestGenerateFollowersGrowsTowardPresent(t *testing.T) {
	s := NewSeeder(newStubStore(), 1, t.TempDir(), zap.NewNop())
	require.NoError(t, s.GenerateFollowers(context.Background(), 200))

	fixtures, err := s.followerCache().Read()
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	fx := fixtures[0]
	require.Len(t, fx.Followers, 200)
	require.Len(t, fx.Audience, 200)

	// Creation dates are sorted and skew recent.
	var firstHalf, secondHalf int
	cutoff := time.Now().AddDate(-1, 0, 0)
	for i, f := range fx.Followers {
		created, err := time.Parse(mysqlTime, f.CreatedAt)
		require.NoError(t, err)
		if i > 0 {
			prev, _ := time.Parse(mysqlTime, fx.Followers[i-1].CreatedAt)
			assert.False(t, created.Before(prev))
		}
		if created.Before(cutoff) {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	assert.Greater(t, secondHalf, firstHalf)

	// Every unfollow points at a confirmed follower.
	confirmed := map[int]bool{}
	for _, f := range fx.Followers {
		if f.ConfirmedAt != "" {
			confirmed[f.TempID] = true
		}
	}
	for _, u := range fx.Unfollows {
		assert.True(t, confirmed[u.FollowerTempID])
	}
}

func TestSeedFollowersStitchesAudienceByTempID(t *testing.T) {
	store := newStubStore()
	s := NewSeeder(store, 1, t.TempDir(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.GenerateFollowers(ctx, 50))

	summary, err := s.SeedFollowers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Created)

	// Each audience row carries the real follower row ID.
	for email, followerID := range store.audience {
		assert.Equal(t, store.followers[email], followerID)
	}
	// Unfollowed rows had their audience flag cleared too.
	for id := range store.unfollows {
		var email string
		for e, fid := range store.followers {
			if fid == id {
				email = e
			}
		}
		assert.True(t, store.cleared[email])
	}
}

func TestSeedFollowersStitchesAudienceForExistingFollower(t *testing.T) {
	store := newStubStore()
	s := NewSeeder(store, 1, t.TempDir(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.GenerateFollowers(ctx, 5))

	fixtures, err := s.followerCache().Read()
	require.NoError(t, err)
	preseeded := fixtures[0].Followers[2].Email
	store.followers[preseeded] = 777

	summary, err := s.SeedFollowers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	// The skipped follower's audience row stitches against the existing row.
	assert.Equal(t, int64(777), store.audience[preseeded])
}

func TestSeedFollowersFailsAudienceRowForFailedFollower(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := newStubStore()
	s := NewSeeder(store, 1, t.TempDir(), zap.New(core))
	ctx := context.Background()
	require.NoError(t, s.GenerateFollowers(ctx, 10))

	fixtures, err := s.followerCache().Read()
	require.NoError(t, err)
	store.failEmail = fixtures[0].Followers[3].Email

	summary, err := s.SeedFollowers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Created)
	assert.Equal(t, 1, summary.Failed)

	// No audience row for the failed follower, and its row fails loudly.
	_, ok := store.audience[store.failEmail]
	assert.False(t, ok)

	var audienceLine string
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, "audience members") {
			audienceLine = entry.Message
		}
	}
	assert.Contains(t, audienceLine, "1 failed")
}

func TestSeedFollowersIdempotent(t *testing.T) {
	store := newStubStore()
	s := NewSeeder(store, 1, t.TempDir(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.GenerateFollowers(ctx, 20))

	first, err := s.SeedFollowers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, first.Created)

	second, err := s.SeedFollowers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 20, second.Skipped)
	assert.Len(t, store.followers, 20)
}
