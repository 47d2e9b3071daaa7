package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shopsync/internal/broker"
	"shopsync/internal/config"
	"shopsync/internal/destination"
	"shopsync/internal/logger"
	"shopsync/internal/mapper"
	"shopsync/internal/order"
	"shopsync/internal/schema"
	"shopsync/internal/signature"
	"shopsync/internal/tenant"
	pkgerrors "shopsync/pkg/errors"
	"shopsync/pkg/metrics"
	"shopsync/pkg/tracing"
)

const maxConcurrentTenants = 4

// publishTimeout bounds the background outcome publication, which runs
// detached from the request context.
const publishTimeout = 30 * time.Second

type Service interface {
	ProcessEvent(ctx context.Context, event InboundEvent) (*Result, error)
}

type serviceImpl struct {
	resolver     *tenant.Resolver
	introspector *schema.Introspector
	writer       destination.Client
	mapper       *mapper.Mapper
	secret       string
	fallback     config.FallbackDestination
	publisher    broker.Publisher
	logger       logger.Logger
}

func NewService(
	resolver *tenant.Resolver,
	introspector *schema.Introspector,
	writer destination.Client,
	m *mapper.Mapper,
	secret string,
	fallback config.FallbackDestination,
	publisher broker.Publisher,
	log logger.Logger,
) Service {
	return &serviceImpl{
		resolver:     resolver,
		introspector: introspector,
		writer:       writer,
		mapper:       m,
		secret:       secret,
		fallback:     fallback,
		publisher:    publisher,
		logger:       log,
	}
}

// ProcessEvent drives one delivery through the pipeline: verify, parse,
// resolve tenants, then fan out the introspect/map/write leg per tenant.
// Structural failures abort before any external call; per-tenant failures
// are contained at the tenant boundary and reported in the aggregate.
func (s *serviceImpl) ProcessEvent(ctx context.Context, event InboundEvent) (*Result, error) {
	ctx, span := tracing.GetTracer("sync-service").Start(ctx, "sync.process_event")
	defer span.End()

	if s.secret == "" {
		return nil, pkgerrors.ErrConfigMissing.WithDetail("message", "webhook secret is not configured")
	}

	// Nothing leaves this process for an unauthenticated event.
	if !signature.Verify(event.Body, event.Signature, s.secret, signature.ModeBase64) {
		return nil, pkgerrors.ErrUnauthorized
	}

	o, err := order.Parse(event.Body)
	if err != nil {
		return nil, pkgerrors.ErrMalformedPayload.WithCause(err)
	}

	bindings, err := s.resolver.Resolve(ctx, event.StorefrontID)
	if err != nil {
		return nil, pkgerrors.ErrInternal.WithCause(err)
	}

	var result *Result
	if len(bindings) == 0 {
		result = s.syncFallback(ctx, o)
	} else {
		result = s.syncTenants(ctx, o, bindings)
	}

	s.logger.InfowCtx(ctx, "Processed order event",
		"storefront", event.StorefrontID,
		"order", o.DisplayName(),
		"total_tenants", result.TotalTenants,
		"synced", result.SyncedToTenants,
	)

	s.publishOutcome(ctx, event, result)

	return result, nil
}

// syncTenants runs each binding independently. A slow or failing
// destination delays and fails only its own outcome.
func (s *serviceImpl) syncTenants(ctx context.Context, o *order.Order, bindings []tenant.Binding) *Result {
	outcomes := make([]TenantOutcome, len(bindings))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTenants)

	for i, b := range bindings {
		g.Go(func() error {
			outcomes[i] = s.syncOne(groupCtx, o, b.ID, b.DestinationID, b.CredentialToken, false)
			// Tenant failures stay inside their outcome; returning an
			// error here would cancel sibling tenants.
			return nil
		})
	}
	g.Wait()

	synced := 0
	for _, out := range outcomes {
		if out.Success {
			synced++
		}
	}

	return &Result{
		Success:          true,
		SyncedToTenants:  synced,
		TotalTenants:     len(bindings),
		PerTenantResults: outcomes,
	}
}

// syncFallback handles the zero-bindings case: the event arrived before
// any tenant finished onboarding. When a fallback destination is
// configured the order is written there, labeled distinctly; otherwise the
// response is an explicit zero-synced success.
func (s *serviceImpl) syncFallback(ctx context.Context, o *order.Order) *Result {
	result := &Result{
		Success:          true,
		SyncedToTenants:  0,
		TotalTenants:     0,
		PerTenantResults: []TenantOutcome{},
	}

	if s.fallback.DatabaseID == "" {
		s.logger.WarnwCtx(ctx, "No tenant bindings and no fallback destination configured",
			"order", o.DisplayName(),
		)
		return result
	}

	outcome := s.syncOne(ctx, o, "default", s.fallback.DatabaseID, s.fallback.Token, true)
	result.PerTenantResults = append(result.PerTenantResults, outcome)
	if outcome.Success {
		metrics.FallbackSyncsTotal.Inc()
	}

	return result
}

func (s *serviceImpl) syncOne(ctx context.Context, o *order.Order, tenantID, destinationID, token string, fallback bool) TenantOutcome {
	outcome := TenantOutcome{
		TenantID:      tenantID,
		DestinationID: destinationID,
		Fallback:      fallback,
	}

	dbSchema, err := s.introspector.GetSchema(ctx, destinationID, token)
	if err != nil {
		outcome.ErrorMessage = err.Error()
		metrics.IncTenantSync("schema_error")
		s.logger.WarnwCtx(ctx, "Schema introspection failed",
			"tenant", tenantID,
			"destination", destinationID,
			"error", err,
		)
		return outcome
	}

	props := s.mapper.Map(o, dbSchema)

	recordID, err := s.writer.CreatePage(ctx, destinationID, token, props)
	if err != nil {
		outcome.ErrorMessage = err.Error()
		if pkgerrors.IsWriteRejected(err) {
			metrics.IncTenantSync("rejected")
		} else {
			metrics.IncTenantSync("unreachable")
		}
		s.logger.WarnwCtx(ctx, "Destination write failed",
			"tenant", tenantID,
			"destination", destinationID,
			"error", err,
		)
		return outcome
	}

	outcome.Success = true
	outcome.RecordID = recordID
	metrics.IncTenantSync("written")
	return outcome
}

// publishOutcome hands the aggregate to the audit stream. Best effort and
// detached: the HTTP response never waits on the broker.
func (s *serviceImpl) publishOutcome(ctx context.Context, event InboundEvent, result *Result) {
	if s.publisher == nil {
		return
	}

	outcomes := make([]broker.TenantOutcome, 0, len(result.PerTenantResults))
	for _, out := range result.PerTenantResults {
		outcomes = append(outcomes, broker.TenantOutcome{
			TenantID: out.TenantID,
			Success:  out.Success,
			RecordID: out.RecordID,
			Error:    out.ErrorMessage,
			Fallback: out.Fallback,
		})
	}

	outcomeEvent := broker.OutcomeEvent{
		ID:           uuid.New().String(),
		StorefrontID: event.StorefrontID,
		Topic:        event.Topic,
		Timestamp:    time.Now(),
		Success:      result.Success,
		TotalTenants: result.TotalTenants,
		Synced:       result.SyncedToTenants,
		Outcomes:     outcomes,
	}

	go func() {
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		// This goroutine runs outside the gin recovery middleware.
		defer func() {
			if err := pkgerrors.RecoverPanic(recover()); err != nil {
				s.logger.ErrorwCtx(publishCtx, "Panic while publishing sync outcome", "error", err)
			}
		}()

		if err := s.publisher.PublishOutcome(publishCtx, outcomeEvent); err != nil {
			s.logger.ErrorwCtx(publishCtx, "Failed to publish sync outcome",
				"event_id", outcomeEvent.ID,
				"error", err,
			)
		}
	}()
}
