package grpc

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	schedv1 "clinicsched/internal/api/schedulingv1"
	"clinicsched/internal/audit"
	"clinicsched/internal/service/scheduling"
	"clinicsched/internal/store/memstore"
)

func startServer(t *testing.T) *grpclib.ClientConn {
	t.Helper()
	return startServerWith(t, scheduling.Options{})
}

func startServerWith(t *testing.T, opts scheduling.Options) *grpclib.ClientConn {
	t.Helper()

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	opts.Logger = slog.Default()
	opts.Now = func() time.Time { return now }
	svc := scheduling.NewService(memstore.New(), opts)

	lis := bufconn.Listen(1 << 20)
	s := grpclib.NewServer(grpclib.UnaryInterceptor(RequestTimeout(5 * time.Second)))
	Register(s, NewSchedulingServer(svc, slog.Default()))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func withActor(ctx context.Context, id, role string, kv ...string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, append([]string{actorIDKey, id, actorRoleKey, role}, kv...)...)
}

func TestEndToEnd_BookingOverGRPC(t *testing.T) {
	conn := startServer(t)
	client := schedv1.NewSchedulingClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: schedv1.ServiceName})
	if err != nil || hc.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("health = %v, %v", hc, err)
	}

	provider := withActor(ctx, "prov-1", "provider")
	loc, err := client.AddLocation(provider, &schedv1.AddLocationRequest{ProviderID: "prov-1", Name: "Downtown"})
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if _, err := client.AddWeeklySlot(provider, &schedv1.AddWeeklySlotRequest{
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		DayOfWeek:  "monday",
		Start:      "09:00",
		End:        "12:00",
	}); err != nil {
		t.Fatalf("AddWeeklySlot: %v", err)
	}

	patient := withActor(ctx, "pat-1", "patient", "idempotency-key", "booking-1")
	req := &schedv1.CreateAppointmentRequest{
		PatientID:  "pat-1",
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		Date:       "2026-03-09",
		Start:      "09:00",
		Type:       "consultation",
	}
	first, err := client.CreateAppointment(patient, req)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if first.Appointment.End != "09:30" || first.Appointment.Status != "confirmed" {
		t.Fatalf("appointment = %+v", first.Appointment)
	}

	replay, err := client.CreateAppointment(patient, req)
	if err != nil {
		t.Fatalf("replayed CreateAppointment: %v", err)
	}
	if replay.Appointment.ID != first.Appointment.ID {
		t.Fatalf("replay id = %s, want %s", replay.Appointment.ID, first.Appointment.ID)
	}

	_, err = client.CreateAppointment(withActor(ctx, "pat-2", "patient"), &schedv1.CreateAppointmentRequest{
		PatientID:  "pat-2",
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		Date:       "2026-03-09",
		Start:      "09:15",
		Type:       "follow_up",
	})
	st := status.Convert(err)
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("overlapping booking code = %s, want %s", st.Code(), codes.FailedPrecondition)
	}
	var reason string
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			reason = info.Reason
		}
	}
	if reason != "CONFLICT" {
		t.Fatalf("reason = %q, want CONFLICT", reason)
	}

	open, err := client.ListOpenSlots(patient, &schedv1.ListOpenSlotsRequest{
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		Date:       "2026-03-09",
		Type:       "procedure",
	})
	if err != nil {
		t.Fatalf("ListOpenSlots: %v", err)
	}
	if len(open.Slots) == 0 || open.Slots[0].Start != "09:30" {
		t.Fatalf("open slots = %+v, want first at 09:30", open.Slots)
	}

	canceled, err := client.CancelAppointment(patient, &schedv1.CancelAppointmentRequest{AppointmentID: first.Appointment.ID})
	if err != nil || canceled.Appointment.Status != "canceled" {
		t.Fatalf("CancelAppointment = %+v, %v", canceled, err)
	}

	feed, err := client.FeedEvents(provider, &schedv1.FeedEventsRequest{ProviderID: "prov-1", Start: "2026-03-01", End: "2026-03-31"})
	if err != nil {
		t.Fatalf("FeedEvents: %v", err)
	}
	if len(feed.Events) != 0 {
		t.Fatalf("feed = %+v, want canceled appointment excluded", feed.Events)
	}

	_, err = client.GetAppointment(withActor(ctx, "pat-2", "patient"), &schedv1.GetAppointmentRequest{AppointmentID: first.Appointment.ID})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("foreign get code = %s, want %s", status.Code(err), codes.NotFound)
	}
}

type blockingSink struct{}

func (blockingSink) Record(ctx context.Context, _ audit.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestEndToEnd_StalledAuditSinkKeepsBookingSuccessful(t *testing.T) {
	conn := startServerWith(t, scheduling.Options{Audit: blockingSink{}, AuditTimeout: time.Minute})
	client := schedv1.NewSchedulingClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider := withActor(ctx, "prov-1", "provider")
	loc, err := client.AddLocation(provider, &schedv1.AddLocationRequest{ProviderID: "prov-1", Name: "Downtown"})
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if _, err := client.AddWeeklySlot(provider, &schedv1.AddWeeklySlotRequest{
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		DayOfWeek:  "monday",
		Start:      "09:00",
		End:        "12:00",
	}); err != nil {
		t.Fatalf("AddWeeklySlot: %v", err)
	}

	short, cancelShort := context.WithTimeout(withActor(context.Background(), "pat-1", "patient"), 500*time.Millisecond)
	defer cancelShort()
	created, err := client.CreateAppointment(short, &schedv1.CreateAppointmentRequest{
		PatientID:  "pat-1",
		ProviderID: "prov-1",
		LocationID: loc.Location.ID,
		Date:       "2026-03-09",
		Start:      "09:00",
		Type:       "consultation",
	})
	if err != nil {
		t.Fatalf("create with stalled audit sink: %v", err)
	}

	list, err := client.ListAppointments(withActor(ctx, "pat-1", "patient"), &schedv1.ListAppointmentsRequest{})
	if err != nil {
		t.Fatalf("patient ListAppointments: %v", err)
	}
	if list.Total != 1 || list.Appointments[0].ID != created.Appointment.ID {
		t.Fatalf("patient list = %+v", list)
	}
}
