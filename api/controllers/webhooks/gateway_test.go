package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeNotificationService struct {
	orderID   string
	rawStatus string
	calls     int
	err       error
}

func (f *fakeNotificationService) HandleGatewayNotification(_ context.Context, orderID, rawStatus string) error {
	f.orderID = orderID
	f.rawStatus = rawStatus
	f.calls++
	return f.err
}

type fakeKeySource struct{ key string }

func (f fakeKeySource) SigningKey() string { return f.key }

func signPayload(key string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postNotification(handler http.Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGatewayWebhookAppliesNotification(t *testing.T) {
	svc := &fakeNotificationService{}
	keys := fakeKeySource{key: "webhook-secret"}
	handler := GatewayWebhook(svc, keys, nil)

	payload := []byte(`{"order_id":"ord-123","transaction_status":"settlement"}`)
	rec := postNotification(handler, payload, signPayload(keys.key, payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.orderID != "ord-123" || svc.rawStatus != "settlement" {
		t.Fatalf("unexpected delivery %q/%q", svc.orderID, svc.rawStatus)
	}
}

func TestGatewayWebhookRejectsMissingSignature(t *testing.T) {
	svc := &fakeNotificationService{}
	handler := GatewayWebhook(svc, fakeKeySource{key: "webhook-secret"}, nil)

	rec := postNotification(handler, []byte(`{"order_id":"ord-123"}`), "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestGatewayWebhookRejectsInvalidSignature(t *testing.T) {
	svc := &fakeNotificationService{}
	handler := GatewayWebhook(svc, fakeKeySource{key: "webhook-secret"}, nil)

	payload := []byte(`{"order_id":"ord-123","transaction_status":"settlement"}`)
	rec := postNotification(handler, payload, signPayload("some-other-key", payload))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestGatewayWebhookRequiresOrderID(t *testing.T) {
	keys := fakeKeySource{key: "webhook-secret"}
	handler := GatewayWebhook(&fakeNotificationService{}, keys, nil)

	payload := []byte(`{"order_id":"  ","transaction_status":"settlement"}`)
	rec := postNotification(handler, payload, signPayload(keys.key, payload))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
