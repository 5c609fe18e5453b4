package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinicsched/internal/domain"
	"clinicsched/internal/service/scheduling"
)

const errorDomain = "clinicsched"

// Reasons attached to FailedPrecondition and AlreadyExists statuses as
// errdetails.ErrorInfo so clients can branch without parsing messages.
const (
	reasonImmutable = "IMMUTABLE_STATE"
	reasonOverlap   = "OVERLAP"
	reasonDailyCap  = "DAILY_CAP_REACHED"
)

var slotReasons = map[domain.Reason]string{
	domain.ReasonOverrideBlock:       "OVERRIDE_BLOCK",
	domain.ReasonConflict:            "CONFLICT",
	domain.ReasonOutsideAvailability: "OUTSIDE_AVAILABILITY",
	domain.ReasonDailyCap:            reasonDailyCap,
}

func withReason(code codes.Code, msg, reason string, meta map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   errorDomain,
		Metadata: meta,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// toStatus maps a service error onto a gRPC status.
func toStatus(err error) error {
	var (
		fErr  *fieldError
		vErr  *scheduling.ValidationError
		nfErr *scheduling.NotFoundError
		suErr *scheduling.SlotUnavailableError
		imErr *scheduling.ImmutableStateError
		ovErr *scheduling.OverlapError
		caErr *scheduling.CapacityExceededError
		stErr *scheduling.StorageError
	)
	switch {
	case errors.As(err, &fErr):
		return status.Error(codes.InvalidArgument, fErr.Error())
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &nfErr):
		return status.Error(codes.NotFound, nfErr.Error())
	case errors.As(err, &suErr):
		reason, ok := slotReasons[suErr.Reason]
		if !ok {
			reason = "SLOT_UNAVAILABLE"
		}
		return withReason(codes.FailedPrecondition, "That slot is not available. Pick a different time.", reason,
			map[string]string{"detail": string(suErr.Reason)})
	case errors.As(err, &caErr):
		return withReason(codes.FailedPrecondition, "The daily appointment limit for this location is reached.", reasonDailyCap, nil)
	case errors.As(err, &imErr):
		return withReason(codes.FailedPrecondition, imErr.Error(), reasonImmutable,
			map[string]string{"status": string(imErr.Status)})
	case errors.As(err, &ovErr):
		return withReason(codes.AlreadyExists, ovErr.Error(), reasonOverlap, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.As(err, &stErr):
		return status.Error(codes.Unavailable, "storage unavailable, try again")
	}
	return status.Error(codes.Internal, "internal error")
}

// fail logs err at the level its kind deserves and returns its status.
// Callers' bad input is a warning, business rejections are info and
// everything else is an error.
func fail(log *slog.Logger, op string, err error, attrs ...any) error {
	st := toStatus(err)
	attrs = append(attrs, slog.Any("err", err))
	switch status.Code(st) {
	case codes.InvalidArgument:
		log.Warn("invalid request", attrs...)
	case codes.NotFound, codes.FailedPrecondition, codes.AlreadyExists, codes.Canceled:
		log.Info(op+" rejected", attrs...)
	default:
		log.Error(op+" failed", attrs...)
	}
	return st
}
