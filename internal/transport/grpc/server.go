package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	schedv1 "clinicsched/internal/api/schedulingv1"
	"clinicsched/internal/domain"
	"clinicsched/internal/service/scheduling"
	"clinicsched/internal/store"
)

type SchedulingServer struct {
	svc schedulingService
	log *slog.Logger
}

var _ schedv1.SchedulingServiceServer = (*SchedulingServer)(nil)

type schedulingService interface {
	CheckAvailability(ctx context.Context, in scheduling.CheckInput) (domain.Decision, error)
	CreateAppointment(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error)
	RescheduleAppointment(ctx context.Context, in scheduling.RescheduleInput) (domain.Appointment, error)
	CancelAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error)
	SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	UpdateNotes(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string) (domain.Appointment, error)
	GetAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error)
	ListAppointments(ctx context.Context, actor domain.Actor, q store.AppointmentQuery) (store.AppointmentPage, error)
	FeedEvents(ctx context.Context, actor domain.Actor, providerID string, from, to domain.Date) ([]domain.FeedEvent, error)
	ListOpenSlots(ctx context.Context, providerID string, locationID uuid.UUID, date domain.Date, typ domain.AppointmentType) (scheduling.OpenSlots, error)

	AddLocation(ctx context.Context, providerID, name, address string) (domain.Location, error)
	DeactivateLocation(ctx context.Context, providerID string, id uuid.UUID) error
	ListLocations(ctx context.Context, providerID string, includeInactive bool) ([]domain.Location, error)
	AddWeeklySlot(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday, win domain.Window) (domain.WeeklyAvailability, error)
	DeleteWeeklySlot(ctx context.Context, providerID string, id uuid.UUID) error
	ListWeeklySlots(ctx context.Context, providerID string, locationID uuid.UUID) ([]domain.WeeklyAvailability, error)
	AddOverride(ctx context.Context, in scheduling.OverrideInput) (domain.Override, error)
	DeleteOverride(ctx context.Context, providerID string, id uuid.UUID) error
	ListOverrides(ctx context.Context, providerID string, from, to domain.Date) ([]domain.Override, error)
	SetDailyCap(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday, maxAppointments int) (domain.DailyCap, error)
	ClearDailyCap(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday) error
	ListDailyCaps(ctx context.Context, providerID string, locationID uuid.UUID) ([]domain.DailyCap, error)
}

func NewSchedulingServer(svc schedulingService, log *slog.Logger) *SchedulingServer {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.scheduling")),
	}
}

// begin starts an RPC: it scopes the logger and resolves the caller.
func begin[T any](ctx context.Context, s *SchedulingServer, rpc string, req *T) (*slog.Logger, domain.Actor, error) {
	log := s.log.With(slog.String("rpc", rpc))
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return log, domain.Actor{}, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return log, domain.Actor{}, fail(log, rpc, err)
	}
	return log.With(slog.String("actor_id", actor.ID), slog.String("actor_role", string(actor.Role))), actor, nil
}

// authorizeProvider guards calendar configuration: only the provider
// themselves or an admin may change it.
func authorizeProvider(log *slog.Logger, actor domain.Actor, providerID string) error {
	if actor.Role == domain.RoleAdmin || (actor.Role == domain.RoleProvider && actor.ID == providerID) {
		return nil
	}
	log.Warn("permission denied", slog.String("provider_id", providerID))
	return status.Error(codes.PermissionDenied, "not allowed to manage this provider's calendar")
}
