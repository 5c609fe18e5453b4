package schedulingv1

import (
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodecIsRegistered(t *testing.T) {
	if c := encoding.GetCodec(CodecName); c == nil {
		t.Fatalf("codec %q not registered", CodecName)
	}
}

func TestCodec_PlainMessages(t *testing.T) {
	in := &CreateAppointmentRequest{PatientID: "pat-1", Date: "2026-03-09", Start: "09:00"}
	b, err := Codec{}.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"patient_id":"pat-1"`) || strings.Contains(string(b), "notes") {
		t.Fatalf("encoded = %s", b)
	}

	var out CreateAppointmentRequest
	if err := (Codec{}).Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != *in {
		t.Fatalf("decoded = %+v, want %+v", out, *in)
	}

	var empty Empty
	if err := (Codec{}).Unmarshal(nil, &empty); err != nil {
		t.Fatalf("Unmarshal empty body: %v", err)
	}
}

func TestCodec_ProtoMessages(t *testing.T) {
	b, err := Codec{}.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), "SERVING") {
		t.Fatalf("encoded = %s, want enum name", b)
	}

	var out healthpb.HealthCheckResponse
	if err := (Codec{}).Unmarshal([]byte(`{"status":"NOT_SERVING","extra":1}`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status = %s", out.Status)
	}
}
