// Package dashboard aggregates pipeline counts for the overview screen.
package dashboard

import (
	"context"
	"sort"

	"leadflow/internal/activity"
	"leadflow/internal/lead"
	"leadflow/internal/user"
	dErrors "leadflow/pkg/domain-errors"
)

// Totals are the headline counters. Tombstoned leads are excluded.
type Totals struct {
	Leads      int `json:"leads"`
	Users      int `json:"users"`
	Activities int `json:"activities"`
}

// MonthCount is how many leads were opened in a calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Stats is the full dashboard payload.
type Stats struct {
	Totals           Totals                `json:"totals"`
	LeadsByStatus    map[lead.Status]int   `json:"leadsByStatus"`
	LeadsByMonth     []MonthCount          `json:"leadsByMonth"`
	ActivitiesByType map[activity.Type]int `json:"activitiesByType"`
}

// LeadSource is the slice of the lead store the dashboard reads.
type LeadSource interface {
	List(ctx context.Context, filter lead.ListFilter) ([]lead.Lead, error)
}

// UserSource is the slice of the user store the dashboard reads.
type UserSource interface {
	List(ctx context.Context) ([]user.User, error)
}

// ActivitySource is the slice of the activity store the dashboard reads.
type ActivitySource interface {
	CountByType(ctx context.Context) (map[activity.Type]int, error)
}

type Service struct {
	leads      LeadSource
	users      UserSource
	activities ActivitySource
}

func NewService(leads LeadSource, users UserSource, activities ActivitySource) *Service {
	return &Service{leads: leads, users: users, activities: activities}
}

// Stats builds the dashboard snapshot. Counts are computed from live rows on
// every call; there is no cached materialization.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	leads, err := s.leads.List(ctx, lead.ListFilter{})
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "lead store unavailable")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "user store unavailable")
	}
	byType, err := s.activities.CountByType(ctx)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
	}

	byStatus := make(map[lead.Status]int)
	byMonth := make(map[string]int)
	for _, l := range leads {
		byStatus[l.Status]++
		byMonth[l.CreatedAt.UTC().Format("2006-01")]++
	}

	months := make([]MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		months = append(months, MonthCount{Month: month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	activityTotal := 0
	for _, n := range byType {
		activityTotal += n
	}

	return Stats{
		Totals: Totals{
			Leads:      len(leads),
			Users:      len(users),
			Activities: activityTotal,
		},
		LeadsByStatus:    byStatus,
		LeadsByMonth:     months,
		ActivitiesByType: byType,
	}, nil
}
