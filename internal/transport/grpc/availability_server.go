package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	schedv1 "clinicsched/internal/api/schedulingv1"
	"clinicsched/internal/domain"
	"clinicsched/internal/service/scheduling"
)

func (s *SchedulingServer) AddLocation(ctx context.Context, req *schedv1.AddLocationRequest) (*schedv1.LocationResponse, error) {
	log, actor, err := begin(ctx, s, "AddLocation", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}

	loc, err := s.svc.AddLocation(ctx, req.ProviderID, req.Name, req.Address)
	if err != nil {
		return nil, fail(log, "location add", err, slog.String("provider_id", req.ProviderID))
	}

	log.Info("location added", slog.String("location_id", loc.ID.String()), slog.String("provider_id", loc.ProviderID))
	return &schedv1.LocationResponse{Location: toLocation(loc)}, nil
}

func (s *SchedulingServer) DeactivateLocation(ctx context.Context, req *schedv1.DeactivateLocationRequest) (*schedv1.Empty, error) {
	log, actor, err := begin(ctx, s, "DeactivateLocation", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	id, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "location deactivate", err)
	}

	if err := s.svc.DeactivateLocation(ctx, req.ProviderID, id); err != nil {
		return nil, fail(log, "location deactivate", err, slog.String("location_id", req.LocationID))
	}

	log.Info("location deactivated", slog.String("location_id", id.String()))
	return &schedv1.Empty{}, nil
}

func (s *SchedulingServer) ListLocations(ctx context.Context, req *schedv1.ListLocationsRequest) (*schedv1.ListLocationsResponse, error) {
	log, _, err := begin(ctx, s, "ListLocations", req)
	if err != nil {
		return nil, err
	}

	locs, err := s.svc.ListLocations(ctx, req.ProviderID, req.IncludeInactive)
	if err != nil {
		return nil, fail(log, "locations list", err, slog.String("provider_id", req.ProviderID))
	}
	return &schedv1.ListLocationsResponse{Locations: mapSlice(locs, toLocation)}, nil
}

func (s *SchedulingServer) AddWeeklySlot(ctx context.Context, req *schedv1.AddWeeklySlotRequest) (*schedv1.WeeklySlotResponse, error) {
	log, actor, err := begin(ctx, s, "AddWeeklySlot", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "weekly slot add", err)
	}
	day, err := parseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, fail(log, "weekly slot add", err)
	}
	win, err := parseWindow(req.Start, req.End)
	if err != nil {
		return nil, fail(log, "weekly slot add", err)
	}

	slot, err := s.svc.AddWeeklySlot(ctx, req.ProviderID, locationID, day, win)
	if err != nil {
		return nil, fail(log, "weekly slot add", err,
			slog.String("location_id", req.LocationID),
			slog.String("day_of_week", day.String()),
		)
	}

	log.Info(
		"weekly slot added",
		slog.String("slot_id", slot.ID.String()),
		slog.String("day_of_week", slot.DayOfWeek.String()),
		slog.String("window", slot.Window().String()),
	)
	return &schedv1.WeeklySlotResponse{Slot: toWeeklySlot(slot)}, nil
}

func (s *SchedulingServer) DeleteWeeklySlot(ctx context.Context, req *schedv1.DeleteWeeklySlotRequest) (*schedv1.Empty, error) {
	log, actor, err := begin(ctx, s, "DeleteWeeklySlot", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	id, err := parseID("slot_id", req.SlotID)
	if err != nil {
		return nil, fail(log, "weekly slot delete", err)
	}

	if err := s.svc.DeleteWeeklySlot(ctx, req.ProviderID, id); err != nil {
		return nil, fail(log, "weekly slot delete", err, slog.String("slot_id", req.SlotID))
	}

	log.Info("weekly slot deleted", slog.String("slot_id", id.String()))
	return &schedv1.Empty{}, nil
}

func (s *SchedulingServer) ListWeeklySlots(ctx context.Context, req *schedv1.ListWeeklySlotsRequest) (*schedv1.ListWeeklySlotsResponse, error) {
	log, _, err := begin(ctx, s, "ListWeeklySlots", req)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "weekly slots list", err)
	}

	slots, err := s.svc.ListWeeklySlots(ctx, req.ProviderID, locationID)
	if err != nil {
		return nil, fail(log, "weekly slots list", err, slog.String("location_id", req.LocationID))
	}
	return &schedv1.ListWeeklySlotsResponse{Slots: mapSlice(slots, toWeeklySlot)}, nil
}

func (s *SchedulingServer) AddOverride(ctx context.Context, req *schedv1.AddOverrideRequest) (*schedv1.OverrideResponse, error) {
	log, actor, err := begin(ctx, s, "AddOverride", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	in, err := overrideInput(req)
	if err != nil {
		return nil, fail(log, "override add", err)
	}

	o, err := s.svc.AddOverride(ctx, in)
	if err != nil {
		return nil, fail(log, "override add", err,
			slog.String("date", req.Date),
			slog.String("location", in.Location.String()),
		)
	}

	log.Info(
		"override added",
		slog.String("override_id", o.ID.String()),
		slog.String("date", o.Date.String()),
		slog.String("kind", string(o.Kind)),
		slog.String("location", o.Location.String()),
		slog.String("time", o.Time.String()),
	)
	return &schedv1.OverrideResponse{Override: toOverride(o)}, nil
}

func overrideInput(req *schedv1.AddOverrideRequest) (scheduling.OverrideInput, error) {
	in := scheduling.OverrideInput{
		ProviderID: req.ProviderID,
		Location:   domain.AllLocations(),
		Reason:     req.Reason,
	}
	locationID, err := parseOptionalID("location_id", req.LocationID)
	if err != nil {
		return in, err
	}
	if locationID != uuid.Nil {
		in.Location = domain.SpecificLocation(locationID)
	}
	if in.Date, err = parseDate("date", req.Date); err != nil {
		return in, err
	}
	if in.Time, err = parseTimeScope(req.Start, req.End); err != nil {
		return in, err
	}
	if in.Kind, err = domain.ParseOverrideKind(req.Kind); err != nil {
		return in, &fieldError{field: "kind", reason: "must be blocking or open"}
	}
	return in, nil
}

func (s *SchedulingServer) DeleteOverride(ctx context.Context, req *schedv1.DeleteOverrideRequest) (*schedv1.Empty, error) {
	log, actor, err := begin(ctx, s, "DeleteOverride", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	id, err := parseID("override_id", req.OverrideID)
	if err != nil {
		return nil, fail(log, "override delete", err)
	}

	if err := s.svc.DeleteOverride(ctx, req.ProviderID, id); err != nil {
		return nil, fail(log, "override delete", err, slog.String("override_id", req.OverrideID))
	}

	log.Info("override deleted", slog.String("override_id", id.String()))
	return &schedv1.Empty{}, nil
}

func (s *SchedulingServer) ListOverrides(ctx context.Context, req *schedv1.ListOverridesRequest) (*schedv1.ListOverridesResponse, error) {
	log, _, err := begin(ctx, s, "ListOverrides", req)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("from", req.From)
	if err != nil {
		return nil, fail(log, "overrides list", err)
	}
	to, err := parseDate("to", req.To)
	if err != nil {
		return nil, fail(log, "overrides list", err)
	}

	list, err := s.svc.ListOverrides(ctx, req.ProviderID, from, to)
	if err != nil {
		return nil, fail(log, "overrides list", err, slog.String("provider_id", req.ProviderID))
	}
	return &schedv1.ListOverridesResponse{Overrides: mapSlice(list, toOverride)}, nil
}

func (s *SchedulingServer) SetDailyCap(ctx context.Context, req *schedv1.SetDailyCapRequest) (*schedv1.DailyCapResponse, error) {
	log, actor, err := begin(ctx, s, "SetDailyCap", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "daily cap set", err)
	}
	day, err := parseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, fail(log, "daily cap set", err)
	}

	c, err := s.svc.SetDailyCap(ctx, req.ProviderID, locationID, day, req.MaxAppointments)
	if err != nil {
		return nil, fail(log, "daily cap set", err, slog.String("location_id", req.LocationID))
	}

	log.Info(
		"daily cap set",
		slog.String("location_id", c.LocationID.String()),
		slog.String("day_of_week", c.DayOfWeek.String()),
		slog.Int("max_appointments", c.MaxAppointments),
	)
	return &schedv1.DailyCapResponse{Cap: toDailyCap(c)}, nil
}

func (s *SchedulingServer) ClearDailyCap(ctx context.Context, req *schedv1.ClearDailyCapRequest) (*schedv1.Empty, error) {
	log, actor, err := begin(ctx, s, "ClearDailyCap", req)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(log, actor, req.ProviderID); err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "daily cap clear", err)
	}
	day, err := parseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, fail(log, "daily cap clear", err)
	}

	if err := s.svc.ClearDailyCap(ctx, req.ProviderID, locationID, day); err != nil {
		return nil, fail(log, "daily cap clear", err, slog.String("location_id", req.LocationID))
	}

	log.Info("daily cap cleared", slog.String("location_id", req.LocationID), slog.String("day_of_week", day.String()))
	return &schedv1.Empty{}, nil
}

func (s *SchedulingServer) ListDailyCaps(ctx context.Context, req *schedv1.ListDailyCapsRequest) (*schedv1.ListDailyCapsResponse, error) {
	log, _, err := begin(ctx, s, "ListDailyCaps", req)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID("location_id", req.LocationID)
	if err != nil {
		return nil, fail(log, "daily caps list", err)
	}

	caps, err := s.svc.ListDailyCaps(ctx, req.ProviderID, locationID)
	if err != nil {
		return nil, fail(log, "daily caps list", err, slog.String("location_id", req.LocationID))
	}
	return &schedv1.ListDailyCapsResponse{Caps: mapSlice(caps, toDailyCap)}, nil
}
