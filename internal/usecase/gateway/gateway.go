package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/dedup"
	"github.com/agencyos/meeting-scribe/pkg/signature"
)

// Headers carries the webhook headers the gateway contract requires
type Headers struct {
	DeliveryID    string
	Signature     string
	Timestamp     string
	Authorization string
}

// Result is the outcome of admitting a delivery
type Result struct {
	DeliveryID string
	Duplicate  bool
	// Delivery is nil for duplicates; they perform no further work
	Delivery *entities.Delivery
}

// Gateway authenticates inbound deliveries, deduplicates by delivery id and
// validates payload shape before anything is acknowledged.
type Gateway struct {
	secret string
	window time.Duration
	store  dedup.DeliveryStore
	v      *validator.Validate
	logger *zap.Logger
}

// New creates a gateway over the given delivery store
func New(secret string, window time.Duration, store dedup.DeliveryStore, logger *zap.Logger) *Gateway {
	return &Gateway{
		secret: secret,
		window: window,
		store:  store,
		v:      validator.New(),
		logger: logger,
	}
}

// Admit runs the synchronous admission path: authentication, atomic dedup
// check, payload shape validation. Anything it rejects never reaches the
// pipeline.
func (g *Gateway) Admit(ctx context.Context, headers Headers, body []byte) (*Result, error) {
	if headers.DeliveryID == "" {
		return nil, apperrors.ErrInvalidArgument("missing delivery identifier header")
	}

	authMethod, err := g.authenticate(headers, body)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("webhook authentication failed",
				zap.String("delivery_id", headers.DeliveryID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	seen, err := g.store.CheckAndSet(ctx, headers.DeliveryID, g.window)
	if err != nil {
		return nil, apperrors.ErrDedupStore(err)
	}
	if seen {
		if g.logger != nil {
			g.logger.Info("duplicate webhook delivery detected",
				zap.String("delivery_id", headers.DeliveryID),
			)
		}
		return &Result{DeliveryID: headers.DeliveryID, Duplicate: true}, nil
	}

	var event entities.MeetingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperrors.ErrInvalidPayload(err)
	}
	if err := g.v.Struct(&event); err != nil {
		return nil, apperrors.ErrInvalidPayload(err)
	}

	if g.logger != nil {
		g.logger.Info("webhook payload validated",
			zap.String("delivery_id", headers.DeliveryID),
			zap.String("meeting_id", event.Meeting.ID),
			zap.String("meeting_title", event.Meeting.Title),
			zap.Int("attendee_count", len(event.Attendees)),
		)
	}

	return &Result{
		DeliveryID: headers.DeliveryID,
		Delivery: &entities.Delivery{
			DeliveryID: headers.DeliveryID,
			RawPayload: body,
			Event:      &event,
			ReceivedAt: time.Now(),
			AuthMethod: authMethod,
		},
	}, nil
}

// authenticate verifies the signature when present, the bearer token
// otherwise. Absence of both is an authentication failure, not a validation
// failure.
func (g *Gateway) authenticate(headers Headers, body []byte) (string, error) {
	switch {
	case headers.Signature != "":
		if !signature.VerifyHMAC(g.secret, body, headers.Signature) {
			return "", apperrors.ErrInvalidSignature()
		}
		return entities.AuthMethodSignature, nil
	case headers.Authorization != "":
		if !signature.VerifyBearer(g.secret, headers.Authorization) {
			return "", apperrors.ErrInvalidBearerToken()
		}
		return entities.AuthMethodBearer, nil
	default:
		return "", apperrors.ErrMissingAuth()
	}
}
