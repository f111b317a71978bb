package handler

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	dto "github.com/agencyos/meeting-scribe/internal/adapter/dto/webhook"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/dedup"
	"github.com/agencyos/meeting-scribe/internal/usecase/gateway"
	"github.com/agencyos/meeting-scribe/internal/usecase/orchestrator"
)

// Inbound webhook headers
const (
	HeaderDeliveryID    = "x-fathom-delivery-id"
	HeaderSignature     = "x-fathom-signature"
	HeaderTimestamp     = "x-fathom-timestamp"
	HeaderAuthorization = "Authorization"
)

// Webhook handles inbound meeting webhooks and delivery status queries
type Webhook struct {
	gateway *gateway.Gateway
	orch    *orchestrator.Orchestrator
	store   dedup.DeliveryStore
	logger  *zap.Logger
}

// NewWebhook creates a webhook handler
func NewWebhook(gw *gateway.Gateway, orch *orchestrator.Orchestrator, store dedup.DeliveryStore, logger *zap.Logger) *Webhook {
	return &Webhook{
		gateway: gw,
		orch:    orch,
		store:   store,
		logger:  logger,
	}
}

// Receive handles POST /webhook/fathom. Admission is synchronous; processing
// happens after the response is written.
func (h *Webhook) Receive(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}

	headers := gateway.Headers{
		DeliveryID:    req.Header.Get(HeaderDeliveryID),
		Signature:     req.Header.Get(HeaderSignature),
		Timestamp:     req.Header.Get(HeaderTimestamp),
		Authorization: req.Header.Get(HeaderAuthorization),
	}

	result, err := h.gateway.Admit(req.Context(), headers, body)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if result.Duplicate {
		return HandleSuccess(h.logger, c, dto.AcceptedResponse{
			Received:   true,
			DeliveryID: result.DeliveryID,
			Status:     "duplicate",
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Duplicate:  true,
		})
	}

	h.orch.Dispatch(result.Delivery)

	return HandleSuccess(h.logger, c, dto.AcceptedResponse{
		Received:   true,
		DeliveryID: result.DeliveryID,
		Status:     "accepted",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// Status handles GET /webhook/status/:deliveryId
func (h *Webhook) Status(c echo.Context) error {
	deliveryID := c.Param("deliveryId")
	if deliveryID == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing delivery identifier"))
	}

	resp := dto.StatusResponse{DeliveryID: deliveryID}

	state, tracked := h.orch.StateOf(deliveryID)
	if tracked {
		resp.State = string(state)
	}

	// The processed mark in the delivery store outlives the in-memory state
	if processedAt, ok, err := h.store.ProcessedAt(c.Request().Context(), deliveryID); err == nil && ok {
		resp.Processed = true
		resp.Timestamp = processedAt.Format(time.RFC3339)
		if !tracked {
			resp.State = string(orchestrator.StateComplete)
		}
	}

	if !tracked && !resp.Processed {
		return HandleError(h.logger, c, apperrors.ErrNotFound("delivery"))
	}

	return HandleSuccess(h.logger, c, resp)
}

// Retry handles POST /webhook/retry/:deliveryId. It replays the newest dead
// letter for the delivery synchronously so the caller sees the outcome.
func (h *Webhook) Retry(c echo.Context) error {
	deliveryID := c.Param("deliveryId")
	if deliveryID == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing delivery identifier"))
	}

	// The replay runs detached from the request context: once started it is
	// not cancelled by the caller hanging up, same as a dispatched delivery
	if err := h.orch.Retry(context.Background(), deliveryID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.RetryResponse{
		DeliveryID: deliveryID,
		DerivedID:  deliveryID + "-retry",
		Status:     "replayed",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
