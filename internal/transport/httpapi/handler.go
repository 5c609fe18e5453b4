// Package httpapi is the read-only HTTP gateway: the calendar feed consumed
// by calendar widgets and the open-slot search used by booking pages.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clinicsched/internal/domain"
	"clinicsched/internal/service/scheduling"
)

const (
	actorIDHeader   = "X-Actor-ID"
	actorRoleHeader = "X-Actor-Role"
)

type gatewayService interface {
	FeedEvents(ctx context.Context, actor domain.Actor, providerID string, from, to domain.Date) ([]domain.FeedEvent, error)
	ListOpenSlots(ctx context.Context, providerID string, locationID uuid.UUID, date domain.Date, typ domain.AppointmentType) (scheduling.OpenSlots, error)
}

type Handler struct {
	svc gatewayService
	log *slog.Logger
}

func NewHandler(svc gatewayService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		svc: svc,
		log: log.With(slog.String("component", "http.gateway")),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/providers/:provider_id/feed", h.Feed)
	g.GET("/providers/:provider_id/locations/:location_id/open-slots", h.OpenSlots)
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type openSlotsBody struct {
	Date       string          `json:"date"`
	Type       string          `json:"type"`
	Slots      []domain.Window `json:"slots"`
	CapReached bool            `json:"cap_reached"`
}

// Feed serves GET /v1/providers/:provider_id/feed?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) Feed(c echo.Context) error {
	log := h.log.With(slog.String("route", "feed"))
	actor, err := actorFromRequest(c.Request())
	if err != nil {
		return h.fail(c, log, err)
	}
	from, err := domain.ParseDate(c.QueryParam("start"))
	if err != nil {
		return h.fail(c, log, badQuery("start must be YYYY-MM-DD"))
	}
	to, err := domain.ParseDate(c.QueryParam("end"))
	if err != nil {
		return h.fail(c, log, badQuery("end must be YYYY-MM-DD"))
	}

	providerID := c.Param("provider_id")
	events, err := h.svc.FeedEvents(c.Request().Context(), actor, providerID, from, to)
	if err != nil {
		return h.fail(c, log, err, slog.String("provider_id", providerID))
	}
	if events == nil {
		events = []domain.FeedEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

// OpenSlots serves GET
// /v1/providers/:provider_id/locations/:location_id/open-slots?date=YYYY-MM-DD&type=T.
func (h *Handler) OpenSlots(c echo.Context) error {
	log := h.log.With(slog.String("route", "open_slots"))
	locationID, err := uuid.Parse(c.Param("location_id"))
	if err != nil {
		return h.fail(c, log, badQuery("location_id must be a UUID"))
	}
	date, err := domain.ParseDate(c.QueryParam("date"))
	if err != nil {
		return h.fail(c, log, badQuery("date must be YYYY-MM-DD"))
	}
	typ := domain.NormalizeType(c.QueryParam("type"))
	if typ == "" {
		typ = domain.TypeConsultation
	}

	providerID := c.Param("provider_id")
	open, err := h.svc.ListOpenSlots(c.Request().Context(), providerID, locationID, date, typ)
	if err != nil {
		return h.fail(c, log, err, slog.String("provider_id", providerID))
	}
	return c.JSON(http.StatusOK, openSlotsBody{
		Date:       date.String(),
		Type:       string(typ),
		Slots:      open.Windows,
		CapReached: open.CapReached,
	})
}

type queryError struct{ msg string }

func (e *queryError) Error() string { return e.msg }

func badQuery(msg string) error { return &queryError{msg: msg} }

func actorFromRequest(r *http.Request) (domain.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(actorIDHeader))
	if id == "" {
		return domain.Actor{}, badQuery(actorIDHeader + " header is required")
	}
	role, err := domain.ParseRole(r.Header.Get(actorRoleHeader))
	if err != nil {
		return domain.Actor{}, badQuery(actorRoleHeader + " header must be provider, patient or admin")
	}
	return domain.Actor{ID: id, Role: role}, nil
}

func (h *Handler) fail(c echo.Context, log *slog.Logger, err error, attrs ...any) error {
	code, body := classify(err)
	attrs = append(attrs, slog.Any("err", err), slog.Int("status", code))
	switch {
	case code >= http.StatusInternalServerError:
		log.Error("request failed", attrs...)
	case code == http.StatusBadRequest:
		log.Warn("invalid request", attrs...)
	default:
		log.Info("request rejected", attrs...)
	}
	return c.JSON(code, body)
}

func classify(err error) (int, errorBody) {
	var (
		qErr  *queryError
		vErr  *scheduling.ValidationError
		nfErr *scheduling.NotFoundError
		suErr *scheduling.SlotUnavailableError
		caErr *scheduling.CapacityExceededError
		stErr *scheduling.StorageError
	)
	switch {
	case errors.As(err, &qErr):
		return http.StatusBadRequest, errorBody{Error: qErr.Error()}
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorBody{Error: vErr.Error()}
	case errors.As(err, &nfErr):
		return http.StatusNotFound, errorBody{Error: nfErr.Error()}
	case errors.As(err, &suErr):
		return http.StatusConflict, errorBody{Error: "slot unavailable", Reason: string(suErr.Reason)}
	case errors.As(err, &caErr):
		return http.StatusConflict, errorBody{Error: "daily limit reached", Reason: string(domain.ReasonDailyCap)}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: "request timed out"}
	case errors.As(err, &stErr):
		return http.StatusServiceUnavailable, errorBody{Error: "storage unavailable, try again"}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal error"}
}
