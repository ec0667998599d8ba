package chatwoot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// CampaignRecord is a generated campaign fixture. TriggerURL and TimeOnPage
// only apply to live-chat campaigns; a ScheduledAt marks the record as a
// one-off SMS campaign targeted at the AudienceLabels.
type CampaignRecord struct {
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Enabled           bool      `json:"enabled"`
	BusinessHoursOnly bool      `json:"trigger_only_during_business_hours"`
	TriggerURL        string    `json:"trigger_url,omitempty"`
	TimeOnPageSeconds int       `json:"time_on_page_seconds,omitempty"`
	ScheduledAt       string    `json:"scheduled_at,omitempty"`
	AudienceLabels    []string  `json:"audience_labels,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *Seeder) campaignCache() *pipeline.Cache[CampaignRecord] {
	return pipeline.NewCache[CampaignRecord](s.dir, "campaigns")
}

func campaignPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic campaign fixtures for a Chatwoot customer support workspace. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d campaigns for a customer support team as a JSON array.

Each element must have these fields:
- "title": short campaign name
- "message": the outreach message shown to the visitor
- "enabled": boolean
- "trigger_only_during_business_hours": boolean

About 70%% of the campaigns are live-chat campaigns; those additionally have:
- "trigger_url": full URL of the page that triggers the campaign (https://example.com/pricing and the like)
- "time_on_page_seconds": integer between 10 and 60

The remaining 30%% are one-off SMS campaigns; those instead have:
- "scheduled_at": an ISO-8601 timestamp within the next two weeks

Make the campaigns diverse: pricing-page nudges, checkout help, onboarding follow-ups, newsletters, product announcements.`, n),
	}
}

// GenerateCampaigns asks the LLM for exactly count campaign fixtures and
// writes them to the cache with faker timestamps. SMS campaigns get their
// audience from the labels cache when one exists.
func (s *Seeder) GenerateCampaigns(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate campaigns: no LLM client configured")
	}

	labels, err := s.labelCache().Read()
	if err != nil {
		labels = nil // audience is resolved against the site at seed time
	}

	campaigns, err := pipeline.GenerateRecords[CampaignRecord](ctx, s.llm, s.logger, campaignPrompt, count)
	if err != nil {
		return fmt.Errorf("generate campaigns: %w", err)
	}

	for i := range campaigns {
		times := s.faker.TimeChain(2, 365*24*time.Hour)
		campaigns[i].CreatedAt = times[0]
		campaigns[i].UpdatedAt = times[1]
		if campaigns[i].TriggerURL != "" && !strings.HasPrefix(campaigns[i].TriggerURL, "http") {
			campaigns[i].TriggerURL = "https://example.com" + campaigns[i].TriggerURL
		}
		if campaigns[i].ScheduledAt != "" && len(labels) > 0 {
			campaigns[i].AudienceLabels = []string{fake.Pick(s.faker, labels).Title}
		}
	}

	if err := s.campaignCache().Write(campaigns); err != nil {
		return err
	}
	s.logger.Info("generated campaigns", zap.Int("count", count))
	return nil
}

// SeedCampaigns creates the cached campaigns: live-chat campaigns against a
// random live-chat inbox with a random agent sender, one-off campaigns
// against an SMS inbox with their audience labels resolved to label IDs.
// Titles that already exist are skipped.
func (s *Seeder) SeedCampaigns(ctx context.Context) (pipeline.Summary, error) {
	campaigns, ok, err := pipeline.Load(s.campaignCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "campaigns"}, err
	}

	inboxes, err := s.api.ListInboxes(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("list inboxes: %w", err)
	}
	// Anything that is not an SMS channel can host a live-chat campaign.
	var liveChat, sms []chatwoot.Inbox
	for _, inbox := range inboxes {
		if inbox.ChannelType == "Channel::Sms" {
			sms = append(sms, inbox)
		} else {
			liveChat = append(liveChat, inbox)
		}
	}
	if len(inboxes) == 0 {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("%w: campaigns need an inbox", apperrors.ErrMissingUpstream)
	}

	agents, err := s.api.ListAgents(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("list agents: %w", err)
	}
	if len(agents) == 0 {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("%w: campaigns need an agent sender", apperrors.ErrMissingUpstream)
	}

	labels, err := s.api.ListLabels(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("list labels: %w", err)
	}
	labelIDs := make(map[string]int, len(labels))
	for _, l := range labels {
		labelIDs[l.Title] = l.ID
	}

	existing, err := s.api.ListCampaigns(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "campaigns"}, fmt.Errorf("precheck campaigns: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Title] = true
	}

	summary := pipeline.Run(ctx, s.runner, "campaigns", campaigns,
		func(c CampaignRecord) string { return c.Title },
		func(ctx context.Context, c CampaignRecord) (pipeline.Status, error) {
			if seen[c.Title] {
				return pipeline.StatusSkipped, nil
			}

			var campaign chatwoot.Campaign
			var buildErr error
			if c.ScheduledAt != "" {
				campaign, buildErr = s.oneOffCampaign(c, sms, labels, labelIDs)
			} else {
				campaign, buildErr = s.liveChatCampaign(c, liveChat, agents)
			}
			if buildErr != nil {
				return pipeline.StatusFailed, buildErr
			}

			if _, err := s.api.AddCampaign(ctx, campaign); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// liveChatCampaign targets an ongoing campaign at a random live-chat inbox
// with a random agent as sender. Records without trigger rules get the
// default front-page rule.
func (s *Seeder) liveChatCampaign(c CampaignRecord, inboxes []chatwoot.Inbox, agents []chatwoot.Agent) (chatwoot.Campaign, error) {
	if len(inboxes) == 0 {
		return chatwoot.Campaign{}, fmt.Errorf("%w: campaign %q needs a live-chat inbox", apperrors.ErrMissingUpstream, c.Title)
	}

	url := c.TriggerURL
	if url == "" {
		url = "https://example.com/"
	}
	timeOnPage := c.TimeOnPageSeconds
	if timeOnPage == 0 {
		timeOnPage = 30
	}

	return chatwoot.Campaign{
		Title:             c.Title,
		Message:           c.Message,
		InboxID:           fake.Pick(s.faker, inboxes).ID,
		SenderID:          fake.Pick(s.faker, agents).ID,
		Enabled:           c.Enabled,
		BusinessHoursOnly: c.BusinessHoursOnly,
		TriggerRules:      map[string]any{"url": url, "time_on_page": timeOnPage},
	}, nil
}

// oneOffCampaign targets a scheduled campaign at an SMS inbox, resolving the
// cached audience label names to the label IDs on the site. Records whose
// audience never got a label fall back to a random site label.
func (s *Seeder) oneOffCampaign(c CampaignRecord, inboxes []chatwoot.Inbox, labels []chatwoot.Label, labelIDs map[string]int) (chatwoot.Campaign, error) {
	if len(inboxes) == 0 {
		return chatwoot.Campaign{}, fmt.Errorf("%w: campaign %q needs an SMS inbox", apperrors.ErrMissingUpstream, c.Title)
	}

	var audience []chatwoot.CampaignAudience
	for _, name := range c.AudienceLabels {
		id, ok := labelIDs[name]
		if !ok {
			return chatwoot.Campaign{}, fmt.Errorf("%w: label %q not on site (run seed-labels first)", apperrors.ErrMissingUpstream, name)
		}
		audience = append(audience, chatwoot.CampaignAudience{ID: id, Type: "Label"})
	}
	if len(audience) == 0 && len(labels) > 0 {
		audience = append(audience, chatwoot.CampaignAudience{ID: fake.Pick(s.faker, labels).ID, Type: "Label"})
	}

	return chatwoot.Campaign{
		Title:       c.Title,
		Message:     c.Message,
		InboxID:     fake.Pick(s.faker, inboxes).ID,
		ScheduledAt: c.ScheduledAt,
		Audience:    audience,
	}, nil
}

// InsertCampaigns generates count campaigns and immediately seeds them.
func (s *Seeder) InsertCampaigns(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateCampaigns(ctx, count); err != nil {
		return pipeline.Summary{Entity: "campaigns"}, err
	}
	return s.SeedCampaigns(ctx)
}
