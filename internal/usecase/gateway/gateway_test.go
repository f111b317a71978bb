package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/dedup"
	"github.com/agencyos/meeting-scribe/pkg/signature"
)

const testSecret = "webhook-secret"

var validPayload = []byte(`{
  "event": "meeting.completed",
  "timestamp": "2026-01-15T10:30:00Z",
  "meeting": {
    "id": "meeting-123",
    "title": "Weekly Sync",
    "url": "https://fathom.video/calls/123",
    "duration_seconds": 1800
  },
  "attendees": [{"name": "Jane Doe", "email": "jane@example.com"}]
}`)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	store := dedup.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return New(testSecret, 24*time.Hour, store, nil)
}

func signedHeaders(id string, payload []byte) Headers {
	return Headers{
		DeliveryID: id,
		Signature:  signature.Prefix + signature.Compute(testSecret, payload),
	}
}

func assertAppCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code)
	}
}

func TestAdmit_SignedDelivery(t *testing.T) {
	gw := newTestGateway(t)

	result, err := gw.Admit(context.Background(), signedHeaders("d-1", validPayload), validPayload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate {
		t.Fatal("first delivery should not be a duplicate")
	}
	if result.Delivery == nil {
		t.Fatal("expected a delivery")
	}
	if result.Delivery.AuthMethod != entities.AuthMethodSignature {
		t.Fatalf("unexpected auth method %q", result.Delivery.AuthMethod)
	}
	if result.Delivery.Event.Meeting.ID != "meeting-123" {
		t.Fatalf("unexpected meeting id %q", result.Delivery.Event.Meeting.ID)
	}
}

func TestAdmit_BearerFallback(t *testing.T) {
	gw := newTestGateway(t)

	headers := Headers{DeliveryID: "d-2", Authorization: "Bearer " + testSecret}
	result, err := gw.Admit(context.Background(), headers, validPayload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delivery.AuthMethod != entities.AuthMethodBearer {
		t.Fatalf("unexpected auth method %q", result.Delivery.AuthMethod)
	}
}

func TestAdmit_DuplicateDelivery(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	if _, err := gw.Admit(ctx, signedHeaders("d-3", validPayload), validPayload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := gw.Admit(ctx, signedHeaders("d-3", validPayload), validPayload)
	if err != nil {
		t.Fatalf("duplicates should not error: %v", err)
	}
	if !result.Duplicate {
		t.Fatal("second delivery should be a duplicate")
	}
	if result.Delivery != nil {
		t.Fatal("duplicates carry no delivery")
	}
}

func TestAdmit_MissingDeliveryID(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.Admit(context.Background(), Headers{}, validPayload)
	assertAppCode(t, err, apperrors.ErrorCode_INVALID_ARGUMENT)
}

func TestAdmit_InvalidSignature(t *testing.T) {
	gw := newTestGateway(t)

	headers := Headers{DeliveryID: "d-4", Signature: "sha256=deadbeef"}
	_, err := gw.Admit(context.Background(), headers, validPayload)
	assertAppCode(t, err, apperrors.ErrorCode_AUTH_INVALID_SIGNATURE)
}

func TestAdmit_InvalidBearer(t *testing.T) {
	gw := newTestGateway(t)

	headers := Headers{DeliveryID: "d-5", Authorization: "Bearer wrong"}
	_, err := gw.Admit(context.Background(), headers, validPayload)
	assertAppCode(t, err, apperrors.ErrorCode_AUTH_INVALID_TOKEN)
}

func TestAdmit_NoCredentials(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.Admit(context.Background(), Headers{DeliveryID: "d-6"}, validPayload)
	assertAppCode(t, err, apperrors.ErrorCode_AUTH_MISSING_CREDENTIALS)
}

// A rejected signature must not consume the delivery id: a later correctly
// signed attempt with the same id is not a duplicate.
func TestAdmit_AuthFailureDoesNotBurnDeliveryID(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	headers := Headers{DeliveryID: "d-7", Signature: "sha256=deadbeef"}
	if _, err := gw.Admit(ctx, headers, validPayload); err == nil {
		t.Fatal("expected auth failure")
	}

	result, err := gw.Admit(ctx, signedHeaders("d-7", validPayload), validPayload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate {
		t.Fatal("rejected attempt should not have consumed the delivery id")
	}
}

func TestAdmit_InvalidPayloads(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	cases := map[string][]byte{
		"not json":       []byte("{{"),
		"wrong event":    []byte(`{"event": "meeting.started", "timestamp": "2026-01-15T10:30:00Z", "meeting": {"id": "m", "url": "https://x.test/1", "duration_seconds": 60}}`),
		"zero duration":  []byte(`{"event": "meeting.completed", "timestamp": "2026-01-15T10:30:00Z", "meeting": {"id": "m", "url": "https://x.test/1", "duration_seconds": 0}}`),
		"missing fields": []byte(`{"event": "meeting.completed"}`),
	}

	i := 0
	for name, payload := range cases {
		i++
		headers := signedHeaders(string(rune('a'+i))+"-bad", payload)
		_, err := gw.Admit(ctx, headers, payload)
		if err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
		assertAppCode(t, err, apperrors.ErrorCode_PAYLOAD_INVALID)
	}
}
