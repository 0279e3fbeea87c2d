package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartroute/internal/config"
	"smartroute/internal/logging"
	"smartroute/internal/middleware"
	"smartroute/internal/models"
	"smartroute/internal/render"
	"smartroute/internal/router"
	"smartroute/internal/state"
	"smartroute/internal/validation"
)

const sessionVisitorID = "visitor_id"

// stopRow is one address input of the route form. The first rows are
// always present.
type stopRow struct {
	Value     string
	Removable bool
}

// AppHandler serves the three screens and their forms.
type AppHandler struct {
	router   *router.Router
	renderer *render.Renderer
	cfg      *config.Config
	logger   *zap.Logger
}

// NewAppHandler creates a new app handler.
func NewAppHandler(r *router.Router, renderer *render.Renderer, cfg *config.Config, logger *zap.Logger) *AppHandler {
	return &AppHandler{
		router:   r,
		renderer: renderer,
		cfg:      cfg,
		logger:   logging.OrNop(logger),
	}
}

// Index renders the current screen.
func (h *AppHandler) Index(c fiber.Ctx) error {
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	s, err := h.router.Current(c.Context(), id)
	if err != nil {
		return h.storeError(err)
	}
	data, err := h.screenData(c, s)
	if err != nil {
		return err
	}
	return c.Render("index", data)
}

// Status renders the screen partial. The page polls it while a request is
// in flight.
func (h *AppHandler) Status(c fiber.Ctx) error {
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	s, err := h.router.Current(c.Context(), id)
	if err != nil {
		return h.storeError(err)
	}
	return h.renderScreen(c, s)
}

// SelectMode opens the prospecting or route form.
func (h *AppHandler) SelectMode(c fiber.Ctx) error {
	view, ok := state.ParseView(c.Params("view"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown screen")
	}
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	s, err := h.router.SelectMode(c.Context(), id, view)
	if err != nil {
		return h.storeError(err)
	}
	return h.respond(c, s)
}

// Back returns to the home screen.
func (h *AppHandler) Back(c fiber.Ctx) error {
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	s, err := h.router.Back(c.Context(), id)
	if err != nil {
		return h.storeError(err)
	}
	return h.respond(c, s)
}

// SubmitProspect starts a prospecting request.
func (h *AppHandler) SubmitProspect(c fiber.Ctx) error {
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	// An unknown count leaves zero, which fails validation.
	count, _ := validation.ParseCount(formValue(c, "count"))
	q := models.NewProspectQuery(formValue(c, "business_type"), formValue(c, "location"), count)

	s, accepted, err := h.router.SubmitProspect(c.Context(), id, q)
	if err != nil {
		return h.storeError(err)
	}
	if !accepted {
		h.logger.Debug("prospect submit ignored", zap.String("status", string(s.Status)))
	}
	return h.respond(c, s)
}

// SubmitRoute starts a route request.
func (h *AppHandler) SubmitRoute(c fiber.Ctx) error {
	id, err := visitorID(c)
	if err != nil {
		return err
	}
	s, accepted, err := h.router.SubmitRoute(c.Context(), id, formValues(c, "stops"))
	if err != nil {
		return h.storeError(err)
	}
	if !accepted {
		h.logger.Debug("route submit ignored", zap.String("status", string(s.Status)))
	}
	return h.respond(c, s)
}

// StopRow renders one empty address input for the route form.
func (h *AppHandler) StopRow(c fiber.Ctx) error {
	return c.Render("partials/stop_row", stopRow{Removable: true}, "")
}

func (h *AppHandler) respond(c fiber.Ctx, s state.Snapshot) error {
	if isHTMX(c) {
		return h.renderScreen(c, s)
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/")
}

func (h *AppHandler) renderScreen(c fiber.Ctx, s state.Snapshot) error {
	data, err := h.screenData(c, s)
	if err != nil {
		return err
	}
	return c.Render("partials/screen", data, "")
}

func (h *AppHandler) screenData(c fiber.Ctx, s state.Snapshot) (fiber.Map, error) {
	result, err := h.renderer.Result(s.Result)
	if err != nil {
		h.logger.Error("failed to render result", zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to render result")
	}

	prospect := s.Prospect
	if prospect.Count == 0 {
		prospect.Count = models.DefaultCount
	}
	stops := make([]stopRow, 0, max(len(s.Stops), models.MinStops))
	for i, v := range s.Stops {
		stops = append(stops, stopRow{Value: v, Removable: i >= models.MinStops})
	}
	for len(stops) < models.MinStops {
		stops = append(stops, stopRow{})
	}

	title := ""
	switch s.View {
	case state.ViewProspect:
		title = "Find prospects"
	case state.ViewRoute:
		title = "Optimize route"
	}

	return MergeBranding(fiber.Map{
		"Title":      title,
		"State":      s,
		"IsHome":     s.View == state.ViewHome,
		"IsProspect": s.View == state.ViewProspect,
		"IsRoute":    s.View == state.ViewRoute,
		"Loading":    s.IsLoading(),
		"Failed":     s.Status == state.StatusFailed,
		"HasResult":  s.Status == state.StatusSuccess && s.Result != nil,
		"Result":     result,
		"Prospect":   prospect,
		"Counts":     models.AllowedCounts,
		"Stops":      stops,
		"User":       middleware.CurrentUser(c),
	}, h.cfg), nil
}

func (h *AppHandler) storeError(err error) error {
	h.logger.Error("visitor state unavailable", zap.Error(err))
	return fiber.NewError(fiber.StatusServiceUnavailable, "Service temporarily unavailable. Try again shortly.")
}

// visitorID returns the id keying this visitor's state, creating one on the
// first request of a session.
func visitorID(c fiber.Ctx) (string, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	if id, ok := sess.Get(sessionVisitorID).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Set(sessionVisitorID, id)
	return id, nil
}

// formValue copies a urlencoded form field out of the request buffer.
func formValue(c fiber.Ctx, key string) string {
	return string(c.Request().PostArgs().Peek(key))
}

// formValues copies every value of a repeated form field.
func formValues(c fiber.Ctx, key string) []string {
	raw := c.Request().PostArgs().PeekMulti(key)
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = string(v)
	}
	return values
}
