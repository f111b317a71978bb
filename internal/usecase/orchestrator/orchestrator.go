package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/dedup"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/external/gamma"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/external/slack"
	"github.com/agencyos/meeting-scribe/internal/usecase/kbcontext"
	"github.com/agencyos/meeting-scribe/internal/usecase/mutation"
	"github.com/agencyos/meeting-scribe/internal/usecase/processing"
	"github.com/agencyos/meeting-scribe/pkg/config"
	pkgvalidator "github.com/agencyos/meeting-scribe/pkg/validator"
)

// State is a delivery's position in the pipeline state machine
type State string

const (
	StateReceived      State = "received"
	StateContextLoaded State = "context_loaded"
	StateProcessed     State = "processed"
	StateValidated     State = "validated"
	StateMutated       State = "mutated"
	StateNotified      State = "notified"
	StateComplete      State = "complete"
	StateFailed        State = "failed"
)

// defaultStateRetention is how long a terminal state entry stays queryable
// before eviction; afterwards the delivery store's processed mark answers
// status queries for completed deliveries.
const defaultStateRetention = time.Hour

// Processor is the opaque AI text-processing collaborator
type Processor interface {
	Process(ctx context.Context, prompt string) (string, error)
}

// Orchestrator sequences the pipeline for admitted deliveries, owns the
// partial-failure policy and dead-letters failures after acknowledgment.
type Orchestrator struct {
	cfg         *config.Config
	contexts    *kbcontext.Cache
	processor   Processor
	output      *processing.Validator
	engine      *mutation.Engine
	store       dedup.DeliveryStore
	deadLetters *DeadLetterStore
	notifier    *slack.Client
	presenter   *gamma.Client
	logger      *zap.Logger

	// Worker pool: bounded concurrency, every task tracked to completion
	sem chan struct{}
	wg  sync.WaitGroup

	mu             sync.Mutex
	states         map[string]State
	stateRetention time.Duration
}

// New constructs the orchestrator. notifier and presenter may be nil.
func New(
	cfg *config.Config,
	contexts *kbcontext.Cache,
	processor Processor,
	output *processing.Validator,
	engine *mutation.Engine,
	store dedup.DeliveryStore,
	deadLetters *DeadLetterStore,
	notifier *slack.Client,
	presenter *gamma.Client,
	logger *zap.Logger,
) *Orchestrator {
	workers := cfg.Pipeline.WorkerCount
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		cfg:            cfg,
		contexts:       contexts,
		processor:      processor,
		output:         output,
		engine:         engine,
		store:          store,
		deadLetters:    deadLetters,
		notifier:       notifier,
		presenter:      presenter,
		logger:         logger,
		sem:            make(chan struct{}, workers),
		states:         make(map[string]State),
		stateRetention: defaultStateRetention,
	}
}

// Dispatch schedules the pipeline for an admitted delivery. It returns
// immediately; the caller has already acknowledged the webhook. Once past
// admission a delivery runs to Complete or Failed with no cancellation.
func (o *Orchestrator) Dispatch(delivery *entities.Delivery) {
	o.setState(delivery.DeliveryID, StateReceived)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.sem <- struct{}{}
		defer func() { <-o.sem }()

		if err := o.run(context.Background(), delivery); err != nil {
			if o.logger != nil {
				o.logger.Error("pipeline failed",
					zap.String("delivery_id", delivery.DeliveryID),
					zap.Error(err),
				)
			}
		}
	}()
}

// Stop waits for all in-flight deliveries to finish, up to the context
// deadline.
func (o *Orchestrator) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown with deliveries still in flight: %w", ctx.Err())
	}
}

// StateOf reports the last observed pipeline state for a delivery
func (o *Orchestrator) StateOf(deliveryID string) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.states[deliveryID]
	return s, ok
}

// run executes the pipeline for one delivery. Any failure from context load
// through mutation writes a dead letter before propagating; notification and
// presentation failures only log.
func (o *Orchestrator) run(ctx context.Context, delivery *entities.Delivery) error {
	start := time.Now()
	event := delivery.Event

	snapshot, err := o.contexts.Load(ctx, false)
	if err != nil {
		return o.fail(delivery, err)
	}
	o.setState(delivery.DeliveryID, StateContextLoaded)

	prompt := processing.BuildPrompt(event, snapshot)

	aiCtx, cancel := context.WithTimeout(ctx, o.cfg.Anthropic.Timeout)
	raw, err := o.processor.Process(aiCtx, prompt)
	cancel()
	if err != nil {
		return o.fail(delivery, apperrors.ErrUpstreamAI(err))
	}
	o.setState(delivery.DeliveryID, StateProcessed)

	result, warnings, err := o.output.Validate(raw)
	if err != nil {
		return o.fail(delivery, err)
	}
	o.setState(delivery.DeliveryID, StateValidated)

	meta := mutation.CommitMeta{
		Title:       event.Meeting.Title,
		MeetingType: result.Classification.Type,
		ActionItems: len(result.ActionItems),
	}
	batch, err := o.engine.Apply(ctx, result.FileUpdates, meta)
	if err != nil {
		if o.logger != nil && batch != nil {
			o.logger.Error("mutation batch aborted with partial writes",
				zap.String("delivery_id", delivery.DeliveryID),
				zap.Int("applied", batch.AppliedCount()),
				zap.Int("total", len(result.FileUpdates)),
			)
		}
		return o.fail(delivery, err)
	}
	o.setState(delivery.DeliveryID, StateMutated)

	if err := o.store.MarkProcessed(ctx, delivery.DeliveryID, o.cfg.Fathom.DedupWindow); err != nil && o.logger != nil {
		o.logger.Warn("failed to mark delivery processed", zap.Error(err))
	}

	o.sideEffects(ctx, delivery, event, result)
	o.setState(delivery.DeliveryID, StateComplete)

	if o.logger != nil {
		o.logger.Info("delivery processing complete",
			zap.String("delivery_id", delivery.DeliveryID),
			zap.String("classification", result.Classification.Type),
			zap.Int("files_updated", batch.AppliedCount()),
			zap.Bool("committed", batch.Committed),
			zap.Int("cross_check_warnings", len(warnings)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}

// sideEffects runs the best-effort presentation and notification steps.
// Their failures never fail the delivery.
func (o *Orchestrator) sideEffects(ctx context.Context, delivery *entities.Delivery, event *entities.MeetingEvent, result *entities.ProcessingResult) {
	if o.presenter != nil && o.presenter.Enabled() {
		p, err := o.presenter.CreatePresentation(ctx, event.Meeting.Title, result.Notifications.SlackSummary)
		if err != nil {
			if o.logger != nil {
				o.logger.Error("presentation generation failed",
					zap.String("delivery_id", delivery.DeliveryID),
					zap.Error(err),
				)
			}
		} else if p != nil {
			result.PresentationURL = p.URL
		}
	}

	if o.notifier != nil && o.notifier.Enabled() {
		err := o.notifier.Notify(ctx, slack.Notification{
			Title:           event.Meeting.Title,
			MeetingType:     result.Classification.Type,
			Date:            event.Date(),
			Summary:         result.Summary.OneLineSummary,
			AttendeeCount:   len(result.Attendees),
			ActionItemCount: len(result.ActionItems),
			UrgentAlert:     result.Notifications.UrgentAlert,
			PresentationURL: result.PresentationURL,
		})
		if err != nil && o.logger != nil {
			o.logger.Error("notification failed",
				zap.String("delivery_id", delivery.DeliveryID),
				zap.Error(err),
			)
		}
	}

	o.setState(delivery.DeliveryID, StateNotified)
}

// fail dead-letters the delivery and marks it Failed
func (o *Orchestrator) fail(delivery *entities.Delivery, cause error) error {
	o.setState(delivery.DeliveryID, StateFailed)

	dl := &entities.DeadLetter{
		DeliveryID: delivery.DeliveryID,
		Timestamp:  time.Now(),
		Error:      cause.Error(),
		Payload:    delivery.Event,
	}
	if err := o.deadLetters.Store(dl); err != nil && o.logger != nil {
		o.logger.Error("failed to store dead letter",
			zap.String("delivery_id", delivery.DeliveryID),
			zap.Error(err),
		)
	}
	return cause
}

// Retry reloads the newest dead letter for the delivery id and reruns the
// full pipeline under a derived identifier. The record is removed only when
// the rerun succeeds.
func (o *Orchestrator) Retry(ctx context.Context, deliveryID string) error {
	dl, filename, err := o.deadLetters.Load(deliveryID)
	if err != nil {
		return apperrors.ErrDeadLetterNotFound(deliveryID)
	}

	// Records sit on disk between failure and replay; re-check the payload
	// shape in case the file was hand-edited
	if dl.Payload == nil {
		return apperrors.ErrInvalidPayload(fmt.Errorf("dead letter %s has no payload", filename))
	}
	if err := pkgvalidator.Struct(dl.Payload); err != nil {
		return apperrors.ErrInvalidPayload(err)
	}

	derived := &entities.Delivery{
		DeliveryID: deliveryID + "-retry",
		Event:      dl.Payload,
		ReceivedAt: time.Now(),
	}

	if o.logger != nil {
		o.logger.Info("retrying dead-lettered delivery",
			zap.String("delivery_id", deliveryID),
			zap.String("derived_id", derived.DeliveryID),
		)
	}

	if err := o.run(ctx, derived); err != nil {
		return err
	}

	if err := o.deadLetters.Remove(filename); err != nil && o.logger != nil {
		o.logger.Warn("failed to remove replayed dead letter",
			zap.String("file", filename),
			zap.Error(err),
		)
	}
	return nil
}

func (o *Orchestrator) setState(deliveryID string, s State) {
	o.mu.Lock()
	o.states[deliveryID] = s
	o.mu.Unlock()

	// Terminal entries are evicted after the retention window so the map
	// stays bounded over the process lifetime
	if s == StateComplete || s == StateFailed {
		time.AfterFunc(o.stateRetention, func() {
			o.mu.Lock()
			if o.states[deliveryID] == s {
				delete(o.states, deliveryID)
			}
			o.mu.Unlock()
		})
	}
}
