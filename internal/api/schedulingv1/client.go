package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
)

// SchedulingClient calls the scheduling service over the JSON codec.
type SchedulingClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulingClient(cc grpc.ClientConnInterface) *SchedulingClient {
	return &SchedulingClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SchedulingClient) CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error) {
	return invoke[CheckAvailabilityResponse](ctx, c.cc, "CheckAvailability", in, opts)
}

func (c *SchedulingClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CreateAppointment", in, opts)
}

func (c *SchedulingClient) RescheduleAppointment(ctx context.Context, in *RescheduleAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "RescheduleAppointment", in, opts)
}

func (c *SchedulingClient) CancelAppointment(ctx context.Context, in *CancelAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CancelAppointment", in, opts)
}

func (c *SchedulingClient) SetAppointmentStatus(ctx context.Context, in *SetAppointmentStatusRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "SetAppointmentStatus", in, opts)
}

func (c *SchedulingClient) UpdateAppointmentNotes(ctx context.Context, in *UpdateAppointmentNotesRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "UpdateAppointmentNotes", in, opts)
}

func (c *SchedulingClient) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "GetAppointment", in, opts)
}

func (c *SchedulingClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, "ListAppointments", in, opts)
}

func (c *SchedulingClient) FeedEvents(ctx context.Context, in *FeedEventsRequest, opts ...grpc.CallOption) (*FeedEventsResponse, error) {
	return invoke[FeedEventsResponse](ctx, c.cc, "FeedEvents", in, opts)
}

func (c *SchedulingClient) ListOpenSlots(ctx context.Context, in *ListOpenSlotsRequest, opts ...grpc.CallOption) (*ListOpenSlotsResponse, error) {
	return invoke[ListOpenSlotsResponse](ctx, c.cc, "ListOpenSlots", in, opts)
}

func (c *SchedulingClient) AddLocation(ctx context.Context, in *AddLocationRequest, opts ...grpc.CallOption) (*LocationResponse, error) {
	return invoke[LocationResponse](ctx, c.cc, "AddLocation", in, opts)
}

func (c *SchedulingClient) DeactivateLocation(ctx context.Context, in *DeactivateLocationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeactivateLocation", in, opts)
}

func (c *SchedulingClient) ListLocations(ctx context.Context, in *ListLocationsRequest, opts ...grpc.CallOption) (*ListLocationsResponse, error) {
	return invoke[ListLocationsResponse](ctx, c.cc, "ListLocations", in, opts)
}

func (c *SchedulingClient) AddWeeklySlot(ctx context.Context, in *AddWeeklySlotRequest, opts ...grpc.CallOption) (*WeeklySlotResponse, error) {
	return invoke[WeeklySlotResponse](ctx, c.cc, "AddWeeklySlot", in, opts)
}

func (c *SchedulingClient) DeleteWeeklySlot(ctx context.Context, in *DeleteWeeklySlotRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteWeeklySlot", in, opts)
}

func (c *SchedulingClient) ListWeeklySlots(ctx context.Context, in *ListWeeklySlotsRequest, opts ...grpc.CallOption) (*ListWeeklySlotsResponse, error) {
	return invoke[ListWeeklySlotsResponse](ctx, c.cc, "ListWeeklySlots", in, opts)
}

func (c *SchedulingClient) AddOverride(ctx context.Context, in *AddOverrideRequest, opts ...grpc.CallOption) (*OverrideResponse, error) {
	return invoke[OverrideResponse](ctx, c.cc, "AddOverride", in, opts)
}

func (c *SchedulingClient) DeleteOverride(ctx context.Context, in *DeleteOverrideRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteOverride", in, opts)
}

func (c *SchedulingClient) ListOverrides(ctx context.Context, in *ListOverridesRequest, opts ...grpc.CallOption) (*ListOverridesResponse, error) {
	return invoke[ListOverridesResponse](ctx, c.cc, "ListOverrides", in, opts)
}

func (c *SchedulingClient) SetDailyCap(ctx context.Context, in *SetDailyCapRequest, opts ...grpc.CallOption) (*DailyCapResponse, error) {
	return invoke[DailyCapResponse](ctx, c.cc, "SetDailyCap", in, opts)
}

func (c *SchedulingClient) ClearDailyCap(ctx context.Context, in *ClearDailyCapRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ClearDailyCap", in, opts)
}

func (c *SchedulingClient) ListDailyCaps(ctx context.Context, in *ListDailyCapsRequest, opts ...grpc.CallOption) (*ListDailyCapsResponse, error) {
	return invoke[ListDailyCapsResponse](ctx, c.cc, "ListDailyCaps", in, opts)
}
