package types

import (
	"strings"
	"time"
)

// Catalog rows ---------------------------------------------------------------------

// TeamRow is a team as stored in the catalog.
type TeamRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ServiceRow is a service joined with its owning team's name.
type ServiceRow struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TeamID          string     `json:"team_id"`
	TeamName        string     `json:"team_name"`
	HealthEndpoint  string     `json:"health_endpoint"`
	IsActive        bool       `json:"is_active"`
	LastPollSuccess *bool      `json:"last_poll_success,omitempty"`
	LastPollError   *string    `json:"last_poll_error,omitempty"`
	LastPolledAt    *time.Time `json:"last_polled_at,omitempty"`
}

// DependencyRow is a polled dependency joined with its association (if any)
// and the rolling 24h latency average computed by the store.
type DependencyRow struct {
	ID            string  `json:"id"`
	ServiceID     string  `json:"service_id"`
	Name          string  `json:"name"`
	CanonicalName *string `json:"canonical_name,omitempty"`
	Type          string  `json:"type"`
	Healthy       *bool   `json:"healthy,omitempty"`
	Skipped       bool    `json:"skipped"`
	LatencyMs     *int64  `json:"latency_ms,omitempty"`

	// Raw JSON text columns. They are parsed lazily and may be malformed.
	CheckDetails *string `json:"check_details,omitempty"`
	Error        *string `json:"error,omitempty"`

	ErrorMessage    *string    `json:"error_message,omitempty"`
	Impact          *string    `json:"impact,omitempty"`
	Contact         *string    `json:"contact,omitempty"`
	ContactOverride *string    `json:"contact_override,omitempty"`
	ImpactOverride  *string    `json:"impact_override,omitempty"`
	LastChecked     *time.Time `json:"last_checked,omitempty"`

	// Association join.
	TargetServiceID *string  `json:"target_service_id,omitempty"`
	AssociationType *string  `json:"association_type,omitempty"`
	IsAutoSuggested bool     `json:"is_auto_suggested"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	AvgLatency24h   *float64 `json:"avg_latency_24h,omitempty"`
}

// Target returns the associated target service id, or "" when the dependency
// has no known owning service.
func (d DependencyRow) Target() string {
	if d.TargetServiceID == nil {
		return ""
	}
	return strings.TrimSpace(*d.TargetServiceID)
}

// DisplayName prefers a non-empty canonical name over the raw polled name.
func (d DependencyRow) DisplayName() string {
	if d.CanonicalName != nil && *d.CanonicalName != "" {
		return *d.CanonicalName
	}
	return d.Name
}

// Canonical returns the canonical name or "".
func (d DependencyRow) Canonical() string {
	if d.CanonicalName == nil {
		return ""
	}
	return *d.CanonicalName
}

// CanonicalOverride is an operator-maintained contact/impact override keyed by
// canonical dependency name. A nil TeamID makes it global.
type CanonicalOverride struct {
	ID              string     `json:"id"`
	CanonicalName   string     `json:"canonical_name"`
	TeamID          *string    `json:"team_id,omitempty"`
	ContactOverride *string    `json:"contact_override,omitempty"`
	ImpactOverride  *string    `json:"impact_override,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// IsGlobal reports whether the override applies to every team.
func (o CanonicalOverride) IsGlobal() bool {
	return o.TeamID == nil || strings.TrimSpace(*o.TeamID) == ""
}

// HealthCounts tallies dependencies by health. A skipped dependency counts as
// skipped only; one with unknown health counts toward nothing.
func HealthCounts(deps []DependencyRow) (healthy, unhealthy, skipped int) {
	for _, dep := range deps {
		switch {
		case dep.Skipped:
			skipped++
		case dep.Healthy == nil:
		case *dep.Healthy:
			healthy++
		default:
			unhealthy++
		}
	}
	return healthy, unhealthy, skipped
}
