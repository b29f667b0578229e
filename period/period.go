package period

import (
	"fmt"
	"time"
)

// Period is the billing unit for one monthly contribution.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (p Period) Equal(in Period) bool {
	return p.Year == in.Year && p.Month == in.Month
}

func (p Period) MonthName() string {
	return p.Month.String()
}

func (p Period) String() string {
	return fmt.Sprintf("%d-%02d", p.Year, int(p.Month))
}

// Resolver derives the active contribution period from wall-clock time.
// Now is swappable so tests can pin a period.
type Resolver struct {
	Now func() time.Time
}

func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

func (r *Resolver) Current() Period {
	now := r.Now().UTC()
	return Period{Year: now.Year(), Month: now.Month()}
}
