// Package state models one visitor's screen and request status as an
// immutable snapshot. Transitions are pure functions returning a new value;
// a transition that does not apply returns the input unchanged and false.
package state

import (
	"slices"

	"smartroute/internal/models"
)

// View is the screen being shown.
type View string

const (
	ViewHome     View = "home"
	ViewProspect View = "prospect"
	ViewRoute    View = "route"
)

// ParseView maps a path segment to a form view.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewProspect:
		return ViewProspect, true
	case ViewRoute:
		return ViewRoute, true
	}
	return "", false
}

// Status is the state of the latest generation request.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Snapshot is one visitor's complete application state.
type Snapshot struct {
	View   View                     `json:"view"`
	Status Status                   `json:"status"`
	Result *models.GenerationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
	// Seq tags the outstanding request. Responses carrying another value are stale.
	Seq uint64 `json:"seq"`

	// Last submitted inputs, used to refill the forms.
	Prospect models.ProspectQuery `json:"prospect"`
	Stops    []string             `json:"stops,omitempty"`
}

// Initial is the state of a new visitor.
func Initial() Snapshot {
	return Snapshot{View: ViewHome, Status: StatusIdle}
}

// IsLoading reports whether a request is outstanding.
func (s Snapshot) IsLoading() bool { return s.Status == StatusLoading }

// Equivalent compares the observable fields, ignoring Seq.
func (s Snapshot) Equivalent(o Snapshot) bool {
	return s.View == o.View &&
		s.Status == o.Status &&
		s.Result == o.Result &&
		s.Error == o.Error &&
		s.Prospect == o.Prospect &&
		slices.Equal(s.Stops, o.Stops)
}

// Select moves from Home to one of the forms.
func Select(s Snapshot, v View) (Snapshot, bool) {
	if s.View != ViewHome || (v != ViewProspect && v != ViewRoute) {
		return s, false
	}
	next := s
	next.View = v
	next.Status = StatusIdle
	next.Result = nil
	next.Error = ""
	return next, true
}

func canSubmit(s Snapshot, v View) bool {
	if s.View != v {
		return false
	}
	switch s.Status {
	case StatusIdle, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// SubmitProspect starts a prospecting request from the prospect form.
func SubmitProspect(s Snapshot, q models.ProspectQuery) (Snapshot, bool) {
	if !canSubmit(s, ViewProspect) {
		return s, false
	}
	next := loading(s)
	next.Prospect = q
	return next, true
}

// SubmitRoute starts a route request from the route form.
func SubmitRoute(s Snapshot, q models.RouteQuery) (Snapshot, bool) {
	if !canSubmit(s, ViewRoute) {
		return s, false
	}
	next := loading(s)
	next.Stops = slices.Clone(q.Stops)
	return next, true
}

func loading(s Snapshot) Snapshot {
	next := s
	next.Status = StatusLoading
	next.Result = nil
	next.Error = ""
	next.Seq = s.Seq + 1
	return next
}

// Succeed stores the result of the request tagged seq.
func Succeed(s Snapshot, seq uint64, r *models.GenerationResult) (Snapshot, bool) {
	if !s.IsLoading() || s.Seq != seq || r == nil {
		return s, false
	}
	next := s
	next.Status = StatusSuccess
	next.Result = r
	next.Error = ""
	return next, true
}

// Fail records a failure of the request tagged seq.
func Fail(s Snapshot, seq uint64, message string) (Snapshot, bool) {
	if !s.IsLoading() || s.Seq != seq {
		return s, false
	}
	next := s
	next.Status = StatusFailed
	next.Result = nil
	next.Error = message
	return next, true
}

// Back returns to Home and clears everything. Seq advances so that any
// outstanding response is discarded when it arrives.
func Back(s Snapshot) Snapshot {
	next := Initial()
	next.Seq = s.Seq + 1
	return next
}
