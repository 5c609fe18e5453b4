// Package schedulingv1 is the wire contract of the clinicsched.v1 scheduling
// service: its messages, its gRPC service descriptor and a typed client. The
// messages are plain structs carried by the JSON codec in this package.
package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "clinicsched.v1.SchedulingService"

// SchedulingServiceServer is implemented by the transport layer.
type SchedulingServiceServer interface {
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	RescheduleAppointment(context.Context, *RescheduleAppointmentRequest) (*AppointmentResponse, error)
	CancelAppointment(context.Context, *CancelAppointmentRequest) (*AppointmentResponse, error)
	SetAppointmentStatus(context.Context, *SetAppointmentStatusRequest) (*AppointmentResponse, error)
	UpdateAppointmentNotes(context.Context, *UpdateAppointmentNotesRequest) (*AppointmentResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	FeedEvents(context.Context, *FeedEventsRequest) (*FeedEventsResponse, error)
	ListOpenSlots(context.Context, *ListOpenSlotsRequest) (*ListOpenSlotsResponse, error)
	AddLocation(context.Context, *AddLocationRequest) (*LocationResponse, error)
	DeactivateLocation(context.Context, *DeactivateLocationRequest) (*Empty, error)
	ListLocations(context.Context, *ListLocationsRequest) (*ListLocationsResponse, error)
	AddWeeklySlot(context.Context, *AddWeeklySlotRequest) (*WeeklySlotResponse, error)
	DeleteWeeklySlot(context.Context, *DeleteWeeklySlotRequest) (*Empty, error)
	ListWeeklySlots(context.Context, *ListWeeklySlotsRequest) (*ListWeeklySlotsResponse, error)
	AddOverride(context.Context, *AddOverrideRequest) (*OverrideResponse, error)
	DeleteOverride(context.Context, *DeleteOverrideRequest) (*Empty, error)
	ListOverrides(context.Context, *ListOverridesRequest) (*ListOverridesResponse, error)
	SetDailyCap(context.Context, *SetDailyCapRequest) (*DailyCapResponse, error)
	ClearDailyCap(context.Context, *ClearDailyCapRequest) (*Empty, error)
	ListDailyCaps(context.Context, *ListDailyCapsRequest) (*ListDailyCapsResponse, error)
}

type handlerFunc[Req, Resp any] func(SchedulingServiceServer, context.Context, *Req) (*Resp, error)

func unary[Req, Resp any](name string, call handlerFunc[Req, Resp]) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SchedulingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SchedulingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SchedulingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CheckAvailability", SchedulingServiceServer.CheckAvailability),
		unary("CreateAppointment", SchedulingServiceServer.CreateAppointment),
		unary("RescheduleAppointment", SchedulingServiceServer.RescheduleAppointment),
		unary("CancelAppointment", SchedulingServiceServer.CancelAppointment),
		unary("SetAppointmentStatus", SchedulingServiceServer.SetAppointmentStatus),
		unary("UpdateAppointmentNotes", SchedulingServiceServer.UpdateAppointmentNotes),
		unary("GetAppointment", SchedulingServiceServer.GetAppointment),
		unary("ListAppointments", SchedulingServiceServer.ListAppointments),
		unary("FeedEvents", SchedulingServiceServer.FeedEvents),
		unary("ListOpenSlots", SchedulingServiceServer.ListOpenSlots),
		unary("AddLocation", SchedulingServiceServer.AddLocation),
		unary("DeactivateLocation", SchedulingServiceServer.DeactivateLocation),
		unary("ListLocations", SchedulingServiceServer.ListLocations),
		unary("AddWeeklySlot", SchedulingServiceServer.AddWeeklySlot),
		unary("DeleteWeeklySlot", SchedulingServiceServer.DeleteWeeklySlot),
		unary("ListWeeklySlots", SchedulingServiceServer.ListWeeklySlots),
		unary("AddOverride", SchedulingServiceServer.AddOverride),
		unary("DeleteOverride", SchedulingServiceServer.DeleteOverride),
		unary("ListOverrides", SchedulingServiceServer.ListOverrides),
		unary("SetDailyCap", SchedulingServiceServer.SetDailyCap),
		unary("ClearDailyCap", SchedulingServiceServer.ClearDailyCap),
		unary("ListDailyCaps", SchedulingServiceServer.ListDailyCaps),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinicsched/v1/scheduling",
}

func RegisterSchedulingServiceServer(s grpc.ServiceRegistrar, srv SchedulingServiceServer) {
	s.RegisterService(&SchedulingServiceDesc, srv)
}
