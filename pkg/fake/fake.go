// Package fake wraps gofakeit with the helpers the seeders share:
// deterministic-when-seeded fakers, ordered timestamp chains, growth-shaped
// date series, and weighted picks.
package fake

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker produces synthetic record fields. Construct one per run and pass it
// into generators explicitly; never share a package-level instance.
type Faker struct {
	f *gofakeit.Faker
}

// New creates a Faker from a random seed.
func New() *Faker {
	return &Faker{f: gofakeit.New(0)}
}

// NewSeeded creates a deterministic Faker, used by tests.
func NewSeeded(seed uint64) *Faker {
	return &Faker{f: gofakeit.New(seed)}
}

// Person is a generated identity with a company email derived from the name.
type Person struct {
	FirstName string
	LastName  string
	Email     string
}

// Person generates a name plus a matching company email, lowercased
// first.last@<domain> like the platforms' own demo data uses.
func (fk *Faker) Person() Person {
	first := fk.f.FirstName()
	last := fk.f.LastName()
	return Person{
		FirstName: first,
		LastName:  last,
		Email:     fk.CompanyEmail(first, last),
	}
}

// CompanyEmail builds a first.last@domain address from a name.
func (fk *Faker) CompanyEmail(first, last string) string {
	local := strings.ToLower(first) + "." + strings.ToLower(last)
	local = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' {
			return r
		}
		return -1
	}, local)
	return fmt.Sprintf("%s@%s", local, fk.f.DomainName())
}

// TimeChain returns n timestamps in non-decreasing order spread across the
// window [now-lookback, now). Generators use it for created/confirmed/updated
// chains where ordering is an invariant of the target platform.
func (fk *Faker) TimeChain(n int, lookback time.Duration) []time.Time {
	now := time.Now().UTC()
	start := now.Add(-lookback)

	times := make([]time.Time, n)
	for i := range times {
		times[i] = fk.f.DateRange(start, now)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// TimeBetween returns a timestamp in [start, end). If the window is empty it
// returns start.
func (fk *Faker) TimeBetween(start, end time.Time) time.Time {
	if !start.Before(end) {
		return start
	}
	return fk.f.DateRange(start, end)
}

// GrowthDates returns n creation dates over the past yearsAgo years with an
// exponential growth shape: most dates land in recent months. Sorted
// chronologically. Used for follower/audience curves.
func (fk *Faker) GrowthDates(n int, yearsAgo int) []time.Time {
	now := time.Now().UTC()
	start := now.AddDate(-yearsAgo, 0, 0)
	totalDays := int(now.Sub(start).Hours() / 24)

	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		// Exponential variate with lambda 2.0, normalized so recent dates
		// are more likely.
		u := fk.Float64Range(1e-9, 1)
		exp := -math.Log(u) / 2.0
		pos := 1.0 - exp/4.0
		if pos < 0 {
			pos = 0
		}
		if pos > 1 {
			pos = 1
		}

		d := start.AddDate(0, 0, int(pos*float64(totalDays)))
		d = d.Add(time.Duration(fk.IntRange(0, 86399)) * time.Second)
		if d.After(now) {
			d = now
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Pick returns one element of choices at random, or the zero value when
// choices is empty. Callers that cannot proceed on an empty slice must
// check before picking.
func Pick[T any](fk *Faker, choices []T) T {
	if len(choices) == 0 {
		var zero T
		return zero
	}
	return choices[fk.IntRange(0, len(choices)-1)]
}

// PickWeighted returns one element, where weights[i] is the relative weight
// of choices[i]. Panics if the slices differ in length.
func PickWeighted[T any](fk *Faker, choices []T, weights []int) T {
	if len(choices) != len(weights) {
		panic("fake: choices and weights must have the same length")
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	r := fk.IntRange(0, total-1)
	for i, w := range weights {
		if r < w {
			return choices[i]
		}
		r -= w
	}
	return choices[len(choices)-1]
}

// Bool returns true with the given percent chance.
func (fk *Faker) Bool(percentTrue int) bool {
	return fk.IntRange(1, 100) <= percentTrue
}

// IntRange returns an int in [min, max].
func (fk *Faker) IntRange(min, max int) int {
	return fk.f.Number(min, max)
}

// Float64Range returns a float64 in [min, max).
func (fk *Faker) Float64Range(min, max float64) float64 {
	return fk.f.Float64Range(min, max)
}

// Raw exposes the underlying gofakeit instance for one-off field types
// (addresses, phone numbers, lorem text, colors).
func (fk *Faker) Raw() *gofakeit.Faker {
	return fk.f
}
