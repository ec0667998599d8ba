// Package gumroad seeds a Gumroad seller's audience directly through MySQL:
// follower rows with an exponential growth curve, matching audience_members
// rows stitched by temp ID, and a simulated unfollow tail.
package gumroad

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
)

// Store is the MySQL surface the seeder needs; tests stub it.
type Store interface {
	InsertFollower(ctx context.Context, f FollowerRow) (int64, error)
	InsertAudienceMember(ctx context.Context, m AudienceMemberRow) error
	FollowerID(ctx context.Context, sellerID int64, email string) (int64, bool, error)
	AudienceMemberExists(ctx context.Context, sellerID int64, email string) (bool, error)
	MarkUnfollowed(ctx context.Context, followerID int64, deletedAt, updatedAt string) error
	ClearFollowerFlag(ctx context.Context, sellerID int64, email, updatedAt string) error
}

// Seeder drives follower and audience generation for one seller.
type Seeder struct {
	store    Store
	sellerID int64
	faker    *fake.Faker
	dir      string
	logger   *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(store Store, sellerID int64, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		store:    store,
		sellerID: sellerID,
		faker:    fake.New(),
		dir:      dir,
		logger:   logger.Named("gumroad"),
	}
}
