package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/satriaputra/tokopos-backend/api/responses"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

const signatureHeader = "X-Gateway-Signature"

// GatewayNotificationService applies one settlement notification.
type GatewayNotificationService interface {
	HandleGatewayNotification(ctx context.Context, orderID, rawStatus string) error
}

type signingKeySource interface {
	SigningKey() string
}

type gatewayNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
}

// GatewayWebhook handles settlement notifications from the payment gateway.
// Deliveries are at-least-once and unordered; the reconcile service makes
// replays harmless, so this handler only verifies the signature and decodes.
func GatewayWebhook(svc GatewayNotificationService, keys signingKeySource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}
		if keys == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get(signatureHeader)
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gateway signature missing"))
			return
		}
		if !validateGatewaySignature(payload, keys.SigningKey(), sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid gateway signature"))
			return
		}

		var event gatewayNotification
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode notification"))
			return
		}
		if strings.TrimSpace(event.OrderID) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required"))
			return
		}

		if err := svc.HandleGatewayNotification(ctx, event.OrderID, event.TransactionStatus); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func validateGatewaySignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
