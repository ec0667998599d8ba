package frappehelpdesk

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var ticketPriorities = []string{"Low", "Medium", "High", "Urgent"}
var ticketPriorityWeights = []int{30, 40, 20, 10}

var ticketStatuses = []string{"Open", "Replied", "Resolved", "Closed"}
var ticketStatusWeights = []int{25, 20, 35, 20}

// TicketRecord is a generated helpdesk ticket fixture. Customer references
// the customers cache by domain; raised_by is an address on that domain.
type TicketRecord struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Customer    string `json:"customer"`
	RaisedBy    string `json:"raised_by"`
}

func (s *Seeder) ticketCache() *pipeline.Cache[TicketRecord] {
	return pipeline.NewCache[TicketRecord](s.dir, "tickets")
}

func ticketPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic helpdesk ticket fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d customer support tickets as a JSON array.

Each element must have:
- "subject": a unique one-line problem summary
- "description": 2-4 sentences from the customer describing the problem, plain text

Mix billing questions, bug reports, how-to questions and outage reports.`, n),
	}
}

// GenerateTickets asks the LLM for exactly count ticket fixtures, then
// assigns priority, status and a reporting customer from the customers
// cache.
func (s *Seeder) GenerateTickets(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate tickets: no LLM client configured")
	}

	customers, err := s.customerCache().Read()
	if err != nil {
		return fmt.Errorf("tickets need customers: %w", err)
	}
	if len(customers) == 0 {
		return fmt.Errorf("tickets need customers: cache is empty (run generate-customers first)")
	}

	tickets, err := pipeline.GenerateRecords[TicketRecord](ctx, s.llm, s.logger, ticketPrompt, count)
	if err != nil {
		return fmt.Errorf("generate tickets: %w", err)
	}

	for i := range tickets {
		customer := fake.Pick(s.faker, customers)
		p := s.faker.Person()
		tickets[i].Priority = fake.PickWeighted(s.faker, ticketPriorities, ticketPriorityWeights)
		tickets[i].Status = fake.PickWeighted(s.faker, ticketStatuses, ticketStatusWeights)
		tickets[i].Customer = customer.Name
		tickets[i].RaisedBy = strings.ToLower(p.FirstName) + "." + strings.ToLower(p.LastName) + "@" + customer.Domain
	}

	if err := s.ticketCache().Write(tickets); err != nil {
		return err
	}
	s.logger.Info("generated tickets", zap.Int("count", count))
	return nil
}

// SeedTickets creates the cached tickets, skipping subjects that already
// exist. Tickets whose customer is missing on the site fail individually.
func (s *Seeder) SeedTickets(ctx context.Context) (pipeline.Summary, error) {
	tickets, ok, err := pipeline.Load(s.ticketCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "tickets"}, err
	}

	seen, err := s.existingValues(ctx, "HD Ticket", "subject")
	if err != nil {
		return pipeline.Summary{Entity: "tickets"}, fmt.Errorf("precheck tickets: %w", err)
	}

	customersOnSite, err := s.existingValues(ctx, "HD Customer", "name")
	if err != nil {
		return pipeline.Summary{Entity: "tickets"}, fmt.Errorf("list customers: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "tickets", tickets,
		func(tk TicketRecord) string { return tk.Subject },
		func(ctx context.Context, tk TicketRecord) (pipeline.Status, error) {
			if seen[tk.Subject] {
				return pipeline.StatusSkipped, nil
			}
			if !customersOnSite[tk.Customer] {
				return pipeline.StatusFailed, fmt.Errorf("%w: customer %q not on site (run seed-customers first)",
					apperrors.ErrMissingUpstream, tk.Customer)
			}
			_, err := s.api.Insert(ctx, "HD Ticket", map[string]any{
				"doctype":     "HD Ticket",
				"subject":     tk.Subject,
				"description": tk.Description,
				"priority":    tk.Priority,
				"status":      tk.Status,
				"customer":    tk.Customer,
				"raised_by":   tk.RaisedBy,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertTickets generates count tickets and immediately seeds them.
func (s *Seeder) InsertTickets(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateTickets(ctx, count); err != nil {
		return pipeline.Summary{Entity: "tickets"}, err
	}
	return s.SeedTickets(ctx)
}
