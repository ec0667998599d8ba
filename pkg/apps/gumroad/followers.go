package gumroad

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// FollowerRecord is a generated follower fixture. TempID links the matching
// audience member until the real row ID exists.
type FollowerRecord struct {
	TempID      int    `json:"temp_id"`
	Email       string `json:"email"`
	Source      string `json:"source"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

// AudienceRecord is the audience_members counterpart of a follower; the
// FollowerTempID is resolved to the inserted row ID during seeding.
type AudienceRecord struct {
	FollowerTempID int    `json:"follower_temp_id"`
	Email          string `json:"email"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// UnfollowRecord simulates churn: a confirmed follower that later left.
type UnfollowRecord struct {
	FollowerTempID int    `json:"follower_temp_id"`
	Email          string `json:"email"`
	UnfollowDate   string `json:"unfollow_date"`
}

// AudienceFixture is the combined cache payload; followers, audience members
// and unfollows are stitched by temp ID so they must be cached together.
type AudienceFixture struct {
	Followers []FollowerRecord `json:"followers"`
	Audience  []AudienceRecord `json:"audience"`
	Unfollows []UnfollowRecord `json:"unfollows"`
}

const mysqlTime = "2006-01-02 15:04:05"

// unfollowPercentage is the share of confirmed followers that later leave.
const unfollowPercentage = 0.08

func (s *Seeder) followerCache() *pipeline.Cache[AudienceFixture] {
	return pipeline.NewCache[AudienceFixture](s.dir, "followers")
}

// GenerateFollowers writes count follower fixtures to the cache with an
// exponential creation-date curve, matching audience members, and a
// simulated unfollow tail.
func (s *Seeder) GenerateFollowers(ctx context.Context, count int) error {
	dates := s.faker.GrowthDates(count, 2)

	followers := make([]FollowerRecord, 0, count)
	audience := make([]AudienceRecord, 0, count)
	usedEmails := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		p := s.faker.Person()
		email := p.Email
		for usedEmails[email] {
			email = strings.Replace(p.Email, "@", fmt.Sprintf("%d@", s.faker.IntRange(1, 9999)), 1)
		}
		usedEmails[email] = true

		created := dates[i]
		updated := s.faker.TimeBetween(created, time.Now())

		f := FollowerRecord{
			TempID:    i,
			Email:     email,
			Source:    "form_embed",
			CreatedAt: created.Format(mysqlTime),
			UpdatedAt: updated.Format(mysqlTime),
		}
		// Around 85% of signups confirm the follow email.
		if s.faker.Bool(85) {
			f.ConfirmedAt = s.faker.TimeBetween(created, updated).Format(mysqlTime)
		}
		followers = append(followers, f)

		audience = append(audience, AudienceRecord{
			FollowerTempID: i,
			Email:          email,
			CreatedAt:      f.CreatedAt,
			UpdatedAt:      f.UpdatedAt,
		})
	}

	var unfollows []UnfollowRecord
	target := int(float64(count) * unfollowPercentage)
	for _, f := range followers {
		if len(unfollows) >= target {
			break
		}
		if f.ConfirmedAt == "" {
			continue
		}
		confirmed, err := time.Parse(mysqlTime, f.ConfirmedAt)
		if err != nil {
			continue
		}
		unfollows = append(unfollows, UnfollowRecord{
			FollowerTempID: f.TempID,
			Email:          f.Email,
			UnfollowDate:   s.faker.TimeBetween(confirmed, time.Now()).Format(mysqlTime),
		})
	}

	fixture := AudienceFixture{Followers: followers, Audience: audience, Unfollows: unfollows}
	if err := s.followerCache().Write([]AudienceFixture{fixture}); err != nil {
		return err
	}
	s.logger.Info("generated followers",
		zap.Int("followers", len(followers)),
		zap.Int("unfollows", len(unfollows)))
	return nil
}

// SeedFollowers inserts the cached followers, resolves each audience
// member's temp ID against the real row ID, and applies the unfollow tail.
// Inserts run sequentially: audience rows need the follower IDs and MySQL
// last-insert-id bookkeeping is per-connection.
func (s *Seeder) SeedFollowers(ctx context.Context) (pipeline.Summary, error) {
	fixtures, ok, err := pipeline.Load(s.followerCache(), s.logger)
	if err != nil || !ok || len(fixtures) == 0 {
		return pipeline.Summary{Entity: "followers"}, err
	}
	fixture := fixtures[0]

	ids := pipeline.NewRefResolver[int, int64]()

	summary := pipeline.RunSequential(ctx, s.logger, "followers", fixture.Followers,
		func(f FollowerRecord) string { return f.Email },
		func(ctx context.Context, f FollowerRecord) (pipeline.Status, error) {
			existingID, found, err := s.store.FollowerID(ctx, s.sellerID, f.Email)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			if found {
				// Register the existing row so audience rows and
				// unfollows still resolve on a re-run.
				ids.Register(f.TempID, existingID)
				return pipeline.StatusSkipped, nil
			}

			id, err := s.store.InsertFollower(ctx, FollowerRow{
				FollowedID:  s.sellerID,
				Email:       f.Email,
				Source:      f.Source,
				CreatedAt:   f.CreatedAt,
				UpdatedAt:   f.UpdatedAt,
				ConfirmedAt: f.ConfirmedAt,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			ids.Register(f.TempID, id)
			return pipeline.StatusCreated, nil
		})
	s.logger.Info(summary.String())

	audienceSummary := pipeline.RunSequential(ctx, s.logger, "audience members", fixture.Audience,
		func(a AudienceRecord) string { return a.Email },
		func(ctx context.Context, a AudienceRecord) (pipeline.Status, error) {
			exists, err := s.store.AudienceMemberExists(ctx, s.sellerID, a.Email)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			if exists {
				return pipeline.StatusSkipped, nil
			}
			followerID, err := ids.Resolve(a.FollowerTempID)
			if err != nil {
				// Follower insert failed; there is no row to stitch against.
				return pipeline.StatusFailed, err
			}
			err = s.store.InsertAudienceMember(ctx, AudienceMemberRow{
				SellerID:          s.sellerID,
				Email:             a.Email,
				FollowerID:        followerID,
				CreatedAt:         a.CreatedAt,
				UpdatedAt:         a.UpdatedAt,
				FollowerCreatedAt: a.CreatedAt,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})
	s.logger.Info(audienceSummary.String())

	for _, u := range fixture.Unfollows {
		followerID, err := ids.Resolve(u.FollowerTempID)
		if err != nil {
			continue
		}
		if err := s.store.MarkUnfollowed(ctx, followerID, u.UnfollowDate, u.UnfollowDate); err != nil {
			s.logger.Error("unfollow update failed", zap.String("email", u.Email), zap.Error(err))
			continue
		}
		if err := s.store.ClearFollowerFlag(ctx, s.sellerID, u.Email, u.UnfollowDate); err != nil {
			s.logger.Error("audience flag update failed", zap.String("email", u.Email), zap.Error(err))
		}
	}

	return summary, nil
}

// InsertFollowers generates count followers and immediately seeds them.
func (s *Seeder) InsertFollowers(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateFollowers(ctx, count); err != nil {
		return pipeline.Summary{Entity: "followers"}, err
	}
	return s.SeedFollowers(ctx)
}
