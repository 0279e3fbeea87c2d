package models

import (
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode identifies which of the two request shapes a generation call serves.
type Mode string

const (
	ModeProspect Mode = "prospect"
	ModeRoute    Mode = "route"
)

// AllowedCounts are the result sizes offered by the prospecting form.
var AllowedCounts = []int{3, 5, 10}

// DefaultCount is preselected in the prospecting form.
const DefaultCount = 5

// MinStops is the minimum number of distinct, non-blank stops a route needs.
const MinStops = 2

// ProspectQuery asks for businesses of a given type near a location.
type ProspectQuery struct {
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
	Count        int    `json:"count"`
}

// NewProspectQuery trims the free-text fields.
func NewProspectQuery(businessType, location string, count int) ProspectQuery {
	return ProspectQuery{
		BusinessType: strings.TrimSpace(businessType),
		Location:     strings.TrimSpace(location),
		Count:        count,
	}
}

// Validate reports whether the query may be submitted.
func (q ProspectQuery) Validate() error {
	return ozzo.ValidateStruct(&q,
		ozzo.Field(&q.BusinessType, ozzo.Required),
		ozzo.Field(&q.Location, ozzo.Required),
		ozzo.Field(&q.Count, ozzo.Required, ozzo.In(toAny(AllowedCounts)...)),
	)
}

// IsZero reports whether no field has been filled in.
func (q ProspectQuery) IsZero() bool {
	return q.BusinessType == "" && q.Location == "" && q.Count == 0
}

// RouteQuery is an unordered list of addresses to visit.
type RouteQuery struct {
	Stops []string `json:"stops"`
}

// NewRouteQuery trims every entry and drops blanks and duplicates,
// keeping the first occurrence of each stop in input order.
func NewRouteQuery(raw []string) RouteQuery {
	seen := make(map[string]struct{}, len(raw))
	stops := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		stops = append(stops, s)
	}
	return RouteQuery{Stops: stops}
}

// Validate reports whether the route has enough stops to be ordered.
func (q RouteQuery) Validate() error {
	return ozzo.ValidateStruct(&q,
		ozzo.Field(&q.Stops, ozzo.Required, ozzo.Length(MinStops, 0)),
	)
}

func toAny(values []int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
