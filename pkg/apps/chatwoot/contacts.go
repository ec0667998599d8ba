package chatwoot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// ContactRecord is a generated contact fixture.
type ContactRecord struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	CompanyName   string    `json:"company_name"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	CustomerSince time.Time `json:"customer_since"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Seeder) contactCache() *pipeline.Cache[ContactRecord] {
	return pipeline.NewCache[ContactRecord](s.dir, "contacts")
}

// GenerateContacts writes exactly count contact fixtures to the cache.
func (s *Seeder) GenerateContacts(ctx context.Context, count int) error {
	contacts := make([]ContactRecord, 0, count)
	for i := 0; i < count; i++ {
		p := s.faker.Person()
		company := s.faker.Raw().Company()
		domain := strings.ToLower(strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, company)) + ".com"
		times := s.faker.TimeChain(2, 365*24*time.Hour)

		contacts = append(contacts, ContactRecord{
			Name:          p.FirstName + " " + p.LastName,
			Email:         strings.ToLower(p.FirstName) + "." + strings.ToLower(p.LastName) + "@" + domain,
			PhoneNumber:   "+1" + s.faker.Raw().Numerify("##########"),
			CompanyName:   company,
			City:          s.faker.Raw().City(),
			State:         s.faker.Raw().State(),
			CustomerSince: s.faker.TimeBetween(time.Now().AddDate(-2, 0, 0), time.Now()),
			CreatedAt:     times[0],
			UpdatedAt:     times[1],
		})
	}

	if err := s.contactCache().Write(contacts); err != nil {
		return err
	}
	s.logger.Info("generated contacts", zap.Int("count", count))
	return nil
}

// SeedContacts creates the cached contacts in the first inbox, skipping
// emails the contact search already knows.
func (s *Seeder) SeedContacts(ctx context.Context) (pipeline.Summary, error) {
	contacts, ok, err := pipeline.Load(s.contactCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "contacts"}, err
	}

	inboxes, err := s.api.ListInboxes(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "contacts"}, fmt.Errorf("list inboxes: %w", err)
	}
	if len(inboxes) == 0 {
		return pipeline.Summary{Entity: "contacts"}, fmt.Errorf("%w: no inbox to attach contacts to", apperrors.ErrMissingUpstream)
	}
	inboxID := inboxes[0].ID

	summary := pipeline.Run(ctx, s.runner, "contacts", contacts,
		func(c ContactRecord) string { return c.Email },
		func(ctx context.Context, c ContactRecord) (pipeline.Status, error) {
			found, err := s.api.SearchContact(ctx, c.Email)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			if found != nil {
				return pipeline.StatusSkipped, nil
			}
			_, err = s.api.AddContact(ctx, chatwoot.Contact{
				Name:        c.Name,
				Email:       c.Email,
				PhoneNumber: c.PhoneNumber,
			}, inboxID)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertContacts generates count contacts and immediately seeds them.
func (s *Seeder) InsertContacts(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateContacts(ctx, count); err != nil {
		return pipeline.Summary{Entity: "contacts"}, err
	}
	return s.SeedContacts(ctx)
}
