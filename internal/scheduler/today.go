package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// BucketPolicy routes entries that carry no session bucket tag. Tagged entries
// always keep their tag.
type BucketPolicy struct {
	ByTaskType map[domain.TaskType]domain.SessionBucket
	Fallback   domain.SessionBucket
}

// DefaultBucketPolicy sends LEARN and PRACTICE to the long session and REVIEW
// to the short one.
func DefaultBucketPolicy() BucketPolicy {
	return BucketPolicy{
		ByTaskType: map[domain.TaskType]domain.SessionBucket{
			domain.TaskLearn:    domain.BucketSessionLongue,
			domain.TaskReview:   domain.BucketSessionCourte,
			domain.TaskPractice: domain.BucketSessionLongue,
		},
		Fallback: domain.BucketSessionCourte,
	}
}

// Validate rejects policies that route to an unknown bucket.
func (p BucketPolicy) Validate() error {
	for tt, b := range p.ByTaskType {
		if !domain.ValidSessionBuckets[string(b)] {
			return &domain.ValidationError{
				Field:   "buckets." + string(tt),
				Message: fmt.Sprintf("unknown session bucket %q", b),
			}
		}
	}
	if !domain.ValidSessionBuckets[string(p.Fallback)] {
		return &domain.ValidationError{Field: "buckets.fallback", Message: fmt.Sprintf("unknown session bucket %q", p.Fallback)}
	}
	return nil
}

// Route returns the section an entry is shown in.
func (p BucketPolicy) Route(e *domain.PlanEntry) domain.SessionBucket {
	if e.SessionBucket != domain.BucketNone {
		return e.SessionBucket
	}
	if b, ok := p.ByTaskType[e.TaskType]; ok {
		return b
	}
	if p.Fallback != domain.BucketNone {
		return p.Fallback
	}
	return domain.BucketSessionCourte
}

// TodaysPlan is the day's workload split into the four session sections.
type TodaysPlan struct {
	Date                        time.Time
	SessionCourte               []domain.PlanEntry
	SessionLongue               []domain.PlanEntry
	SessionCourteSupplementaire []domain.PlanEntry
	SessionLongueSupplementaire []domain.PlanEntry
	// Phase1ModuleID is the module of the earliest unfinished LEARN entry of
	// the whole plan, nil once every LEARN entry is done.
	Phase1ModuleID *string
	TotalBlocks    int
}

// Section returns the entries routed to bucket.
func (p *TodaysPlan) Section(bucket domain.SessionBucket) []domain.PlanEntry {
	switch bucket {
	case domain.BucketSessionCourte:
		return p.SessionCourte
	case domain.BucketSessionLongue:
		return p.SessionLongue
	case domain.BucketSessionCourteSupp:
		return p.SessionCourteSupplementaire
	case domain.BucketSessionLongueSupp:
		return p.SessionLongueSupplementaire
	default:
		return nil
	}
}

// Entries returns every entry of the day in section order.
func (p *TodaysPlan) Entries() []domain.PlanEntry {
	var all []domain.PlanEntry
	for _, b := range SectionOrder {
		all = append(all, p.Section(b)...)
	}
	return all
}

// TotalMinutes converts TotalBlocks to minutes.
func (p *TodaysPlan) TotalMinutes() int {
	return p.TotalBlocks * domain.BlockMinutes
}

// SectionOrder is the display order of the day's sections.
var SectionOrder = []domain.SessionBucket{
	domain.BucketSessionCourte,
	domain.BucketSessionLongue,
	domain.BucketSessionCourteSupp,
	domain.BucketSessionLongueSupp,
}

// BuildTodaysPlan keeps the entries dated today and routes each into a session
// section. entries may cover the whole plan; only the Phase 1 lookup reads
// beyond today.
func BuildTodaysPlan(entries []*domain.PlanEntry, today time.Time, policy BucketPolicy) (TodaysPlan, error) {
	day := domain.Day(today)
	plan := TodaysPlan{Date: day}
	if err := checkBlocks(entries); err != nil {
		return plan, err
	}

	sorted := sortedEntries(entries)
	for _, e := range sorted {
		if !domain.Day(e.Date).Equal(day) {
			continue
		}
		entry := *e
		switch policy.Route(e) {
		case domain.BucketSessionLongue:
			plan.SessionLongue = append(plan.SessionLongue, entry)
		case domain.BucketSessionCourteSupp:
			plan.SessionCourteSupplementaire = append(plan.SessionCourteSupplementaire, entry)
		case domain.BucketSessionLongueSupp:
			plan.SessionLongueSupplementaire = append(plan.SessionLongueSupplementaire, entry)
		default:
			plan.SessionCourte = append(plan.SessionCourte, entry)
		}
		plan.TotalBlocks += e.EstimatedBlocks
	}

	plan.Phase1ModuleID = phase1Module(sorted)
	return plan, nil
}

// phase1Module returns the module of the first LEARN entry still to do.
// sorted must already be in plan order.
func phase1Module(sorted []*domain.PlanEntry) *string {
	for _, e := range sorted {
		if e.TaskType != domain.TaskLearn || e.ModuleKey() == "" {
			continue
		}
		if e.Status == domain.StatusCompleted || e.Status == domain.StatusSkipped {
			continue
		}
		id := e.ModuleKey()
		return &id
	}
	return nil
}
