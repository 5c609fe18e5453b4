package grpc

import (
	"context"
	"log/slog"

	schedv1 "clinicsched/internal/api/schedulingv1"
	"clinicsched/internal/domain"
	"clinicsched/internal/service/scheduling"
	"clinicsched/internal/store"
)

func (s *SchedulingServer) CheckAvailability(ctx context.Context, req *schedv1.CheckAvailabilityRequest) (*schedv1.CheckAvailabilityResponse, error) {
	log, _, err := begin(ctx, s, "CheckAvailability", req)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "availability check", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fail(log, "availability check", err)
	}
	win, err := parseWindow(req.Start, req.End)
	if err != nil {
		return nil, fail(log, "availability check", err)
	}
	exclude, err := parseOptionalID("exclude_appointment_id", req.ExcludeAppointmentID)
	if err != nil {
		return nil, fail(log, "availability check", err)
	}

	decision, err := s.svc.CheckAvailability(ctx, scheduling.CheckInput{
		ProviderID:           req.ProviderID,
		LocationID:           locationID,
		Date:                 date,
		Window:               win,
		ExcludeAppointmentID: exclude,
	})
	if err != nil {
		return nil, fail(log, "availability check", err, slog.String("provider_id", req.ProviderID))
	}

	log.Debug(
		"availability checked",
		slog.String("provider_id", req.ProviderID),
		slog.Bool("available", decision.Available),
		slog.String("reason", string(decision.Reason)),
	)
	return &schedv1.CheckAvailabilityResponse{
		Available: decision.Available,
		Reason:    string(decision.Reason),
	}, nil
}

func (s *SchedulingServer) CreateAppointment(ctx context.Context, req *schedv1.CreateAppointmentRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "CreateAppointment", req)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "appointment create", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fail(log, "appointment create", err)
	}
	start, err := parseClock("start", req.Start)
	if err != nil {
		return nil, fail(log, "appointment create", err)
	}

	appt, err := s.svc.CreateAppointment(ctx, scheduling.CreateInput{
		Actor:          actor,
		PatientID:      req.PatientID,
		ProviderID:     req.ProviderID,
		LocationID:     locationID,
		Date:           date,
		Start:          start,
		Type:           domain.NormalizeType(req.Type),
		Reason:         req.Reason,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, fail(log, "appointment create", err,
			slog.String("provider_id", req.ProviderID),
			slog.String("date", req.Date),
			slog.String("start", req.Start),
		)
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("provider_id", appt.ProviderID),
		slog.String("date", appt.Date.String()),
		slog.String("window", appt.Window().String()),
	)
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) RescheduleAppointment(ctx context.Context, req *schedv1.RescheduleAppointmentRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "RescheduleAppointment", req)
	if err != nil {
		return nil, err
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, fail(log, "appointment reschedule", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fail(log, "appointment reschedule", err)
	}
	start, err := parseClock("start", req.Start)
	if err != nil {
		return nil, fail(log, "appointment reschedule", err)
	}
	locationID, err := parseOptionalID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "appointment reschedule", err)
	}

	appt, err := s.svc.RescheduleAppointment(ctx, scheduling.RescheduleInput{
		Actor:         actor,
		AppointmentID: id,
		Date:          date,
		Start:         start,
		LocationID:    locationID,
	})
	if err != nil {
		return nil, fail(log, "appointment reschedule", err, slog.String("appointment_id", req.AppointmentID))
	}

	log.Info(
		"appointment rescheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("date", appt.Date.String()),
		slog.String("window", appt.Window().String()),
	)
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) CancelAppointment(ctx context.Context, req *schedv1.CancelAppointmentRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "CancelAppointment", req)
	if err != nil {
		return nil, err
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, fail(log, "appointment cancel", err)
	}

	appt, err := s.svc.CancelAppointment(ctx, actor, id)
	if err != nil {
		return nil, fail(log, "appointment cancel", err, slog.String("appointment_id", req.AppointmentID))
	}

	log.Info("appointment canceled", slog.String("appointment_id", appt.ID.String()))
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) SetAppointmentStatus(ctx context.Context, req *schedv1.SetAppointmentStatusRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "SetAppointmentStatus", req)
	if err != nil {
		return nil, err
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, fail(log, "appointment status", err)
	}
	st, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, fail(log, "appointment status", &fieldError{field: "status", reason: "is not a known status"})
	}

	appt, err := s.svc.SetStatus(ctx, actor, id, st)
	if err != nil {
		return nil, fail(log, "appointment status", err,
			slog.String("appointment_id", req.AppointmentID),
			slog.String("status", string(st)),
		)
	}

	log.Info("appointment status changed",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("status", string(appt.Status)),
	)
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) UpdateAppointmentNotes(ctx context.Context, req *schedv1.UpdateAppointmentNotesRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "UpdateAppointmentNotes", req)
	if err != nil {
		return nil, err
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, fail(log, "appointment notes", err)
	}

	appt, err := s.svc.UpdateNotes(ctx, actor, id, req.Notes)
	if err != nil {
		return nil, fail(log, "appointment notes", err, slog.String("appointment_id", req.AppointmentID))
	}

	log.Info("appointment notes updated", slog.String("appointment_id", appt.ID.String()))
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) GetAppointment(ctx context.Context, req *schedv1.GetAppointmentRequest) (*schedv1.AppointmentResponse, error) {
	log, actor, err := begin(ctx, s, "GetAppointment", req)
	if err != nil {
		return nil, err
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, fail(log, "appointment get", err)
	}

	appt, err := s.svc.GetAppointment(ctx, actor, id)
	if err != nil {
		return nil, fail(log, "appointment get", err, slog.String("appointment_id", req.AppointmentID))
	}
	return &schedv1.AppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *SchedulingServer) ListAppointments(ctx context.Context, req *schedv1.ListAppointmentsRequest) (*schedv1.ListAppointmentsResponse, error) {
	log, actor, err := begin(ctx, s, "ListAppointments", req)
	if err != nil {
		return nil, err
	}
	q, err := appointmentQuery(req)
	if err != nil {
		return nil, fail(log, "appointments list", err)
	}

	page, err := s.svc.ListAppointments(ctx, actor, q)
	if err != nil {
		return nil, fail(log, "appointments list", err, slog.String("provider_id", req.ProviderID))
	}

	log.Info(
		"appointments listed",
		slog.String("provider_id", req.ProviderID),
		slog.Int("count", len(page.Items)),
		slog.Int("total", page.Total),
	)
	return &schedv1.ListAppointmentsResponse{
		Appointments: mapSlice(page.Items, toAppointment),
		Total:        page.Total,
		Page:         page.Page,
		PageSize:     page.PageSize,
	}, nil
}

func appointmentQuery(req *schedv1.ListAppointmentsRequest) (store.AppointmentQuery, error) {
	q := store.AppointmentQuery{
		ProviderID: req.ProviderID,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Descending: req.Descending,
	}
	sort, err := store.ParseSortField(req.Sort)
	if err != nil {
		return q, &fieldError{field: "sort", reason: "must be one of date, patient, type, status, location, created"}
	}
	q.Sort = sort
	if req.From != "" {
		from, err := parseDate("from", req.From)
		if err != nil {
			return q, err
		}
		q.Filter.From = &from
	}
	if req.To != "" {
		to, err := parseDate("to", req.To)
		if err != nil {
			return q, err
		}
		q.Filter.To = &to
	}
	for _, raw := range req.Statuses {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return q, &fieldError{field: "statuses", reason: "contains an unknown status"}
		}
		q.Filter.Statuses = append(q.Filter.Statuses, st)
	}
	if req.Type != "" {
		q.Filter.Type = domain.NormalizeType(req.Type)
	}
	if q.Filter.LocationID, err = parseOptionalID("location_id", req.LocationID); err != nil {
		return q, err
	}
	q.Filter.PatientID = req.PatientID
	q.Filter.Search = req.Search
	return q, nil
}

func (s *SchedulingServer) FeedEvents(ctx context.Context, req *schedv1.FeedEventsRequest) (*schedv1.FeedEventsResponse, error) {
	log, actor, err := begin(ctx, s, "FeedEvents", req)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("start", req.Start)
	if err != nil {
		return nil, fail(log, "feed", err)
	}
	to, err := parseDate("end", req.End)
	if err != nil {
		return nil, fail(log, "feed", err)
	}

	events, err := s.svc.FeedEvents(ctx, actor, req.ProviderID, from, to)
	if err != nil {
		return nil, fail(log, "feed", err, slog.String("provider_id", req.ProviderID))
	}

	log.Info("feed served", slog.String("provider_id", req.ProviderID), slog.Int("count", len(events)))
	return &schedv1.FeedEventsResponse{Events: mapSlice(events, toFeedEvent)}, nil
}

func (s *SchedulingServer) ListOpenSlots(ctx context.Context, req *schedv1.ListOpenSlotsRequest) (*schedv1.ListOpenSlotsResponse, error) {
	log, _, err := begin(ctx, s, "ListOpenSlots", req)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "open slots", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fail(log, "open slots", err)
	}

	open, err := s.svc.ListOpenSlots(ctx, req.ProviderID, locationID, date, domain.NormalizeType(req.Type))
	if err != nil {
		return nil, fail(log, "open slots", err, slog.String("provider_id", req.ProviderID))
	}
	return &schedv1.ListOpenSlotsResponse{
		Slots:      mapSlice(open.Windows, toTimeSlot),
		CapReached: open.CapReached,
	}, nil
}
