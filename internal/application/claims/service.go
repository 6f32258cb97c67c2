// Package claims provides the application service orchestrating the claim
// lifecycle: loading aggregates, running transitions, persisting with
// optimistic concurrency, and fanning out notifications.
package claims

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
	infraClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/claims"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/notify"
)

// maxTransitionRetries bounds the reload-and-retry loop on version conflicts.
// Guards re-run against the fresh state on every attempt, so a transition
// that became illegal after a concurrent write fails cleanly instead of
// retrying forever.
const maxTransitionRetries = 3

// ClaimService coordinates claim lifecycle operations.
type ClaimService struct {
	repo     infraClaims.ClaimRepository
	events   infraClaims.EventStore
	machine  *domainClaims.StateMachine
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewClaimService creates a new claim service.
func NewClaimService(repo infraClaims.ClaimRepository, events infraClaims.EventStore, machine *domainClaims.StateMachine, notifier notify.Notifier, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		repo:     repo,
		events:   events,
		machine:  machine,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock, used by tests.
func (s *ClaimService) WithClock(now func() time.Time) *ClaimService {
	s.now = now
	return s
}

// CreateDraft creates a claim in DRAFT without running intake validation.
func (s *ClaimService) CreateDraft(ctx context.Context, actor domainClaims.Actor, cmd domainClaims.CreateDraftCommand) (*domainClaims.Claim, error) {
	return s.create(ctx, actor, func(id, number string) (*domainClaims.Claim, []domainClaims.NotificationIntent, error) {
		return s.machine.CreateDraft(actor, cmd, id, number)
	})
}

// CreateOpen creates a claim and runs intake in one step, landing it in OPEN.
// Eligibility is checked as part of intake; an ineligible vehicle blocks the
// whole creation.
func (s *ClaimService) CreateOpen(ctx context.Context, actor domainClaims.Actor, draft domainClaims.CreateDraftCommand, intake domainClaims.CompleteIntakeCommand) (*domainClaims.Claim, error) {
	return s.create(ctx, actor, func(id, number string) (*domainClaims.Claim, []domainClaims.NotificationIntent, error) {
		return s.machine.CreateOpen(actor, draft, intake, id, number)
	})
}

func (s *ClaimService) create(ctx context.Context, actor domainClaims.Actor, build func(id, number string) (*domainClaims.Claim, []domainClaims.NotificationIntent, error)) (*domainClaims.Claim, error) {
	year := s.now().Year()
	seq, err := s.repo.NextClaimSequence(ctx, year)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	number := domainClaims.FormatClaimNumber(year, seq)

	claim, intents, err := build(id, number)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, claim); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, domainClaims.NewClaimCreatedEvent(claim).WithActor(actor))
	s.dispatch(ctx, intents)

	s.logger.Info("claim created",
		zap.String("claimId", claim.ID),
		zap.String("claimNumber", claim.ClaimNumber),
		zap.String("status", string(claim.Status)),
		zap.String("actorId", actor.ID),
	)
	return claim, nil
}

// Transition applies one lifecycle operation to a claim. On a version
// conflict the claim is reloaded and the transition re-evaluated, up to
// maxTransitionRetries attempts.
func (s *ClaimService) Transition(ctx context.Context, actor domainClaims.Actor, claimID string, cmd domainClaims.Command) (*domainClaims.Claim, error) {
	var lastErr error
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		claim, err := s.repo.FindByID(ctx, claimID)
		if err != nil {
			return nil, err
		}
		from := claim.Status

		updated, intents, err := s.machine.Apply(claim, actor, cmd)
		if err != nil {
			return nil, err
		}

		if err := s.repo.Save(ctx, updated, claim.Version); err != nil {
			if errors.Is(err, domainClaims.ErrConcurrencyConflict) {
				lastErr = err
				s.logger.Warn("claim version conflict, retrying",
					zap.String("claimId", claimID),
					zap.String("operation", string(cmd.Operation())),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, err
		}

		s.appendEvent(ctx, domainClaims.NewClaimTransitionedEvent(updated, cmd.Operation(), from).WithActor(actor))
		s.dispatch(ctx, intents)

		s.logger.Info("claim transitioned",
			zap.String("claimId", claimID),
			zap.String("operation", string(cmd.Operation())),
			zap.String("from", string(from)),
			zap.String("to", string(updated.Status)),
			zap.String("actorId", actor.ID),
		)
		return updated, nil
	}
	return nil, lastErr
}

// Get returns the claim with the given id.
func (s *ClaimService) Get(ctx context.Context, claimID string) (*domainClaims.Claim, error) {
	return s.repo.FindByID(ctx, claimID)
}

// List returns claims matching the filter.
func (s *ClaimService) List(ctx context.Context, filter infraClaims.ListFilter) ([]*domainClaims.Claim, error) {
	return s.repo.List(ctx, filter)
}

// History returns the audit trail of a claim. The claim must exist.
func (s *ClaimService) History(ctx context.Context, claimID string) ([]*domainClaims.ClaimEvent, error) {
	if _, err := s.repo.FindByID(ctx, claimID); err != nil {
		return nil, err
	}
	return s.events.EventsForClaim(ctx, claimID)
}

// ValidOperations returns the operations legal from the claim's current
// state, for rendering action menus.
func (s *ClaimService) ValidOperations(ctx context.Context, claimID string) ([]domainClaims.Operation, error) {
	claim, err := s.repo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return domainClaims.ValidTransitions(claim.Status), nil
}

// The audit trail and notifications are best effort: the transition is
// already durable and must not be rolled back by a failing side channel.
func (s *ClaimService) appendEvent(ctx context.Context, event *domainClaims.ClaimEvent) {
	if err := s.events.Append(ctx, event); err != nil {
		s.logger.Error("failed to append claim event",
			zap.String("claimId", event.AggregateID),
			zap.String("eventType", string(event.Type)),
			zap.Error(err),
		)
	}
}

func (s *ClaimService) dispatch(ctx context.Context, intents []domainClaims.NotificationIntent) {
	if len(intents) == 0 {
		return
	}
	if err := s.notifier.Dispatch(ctx, intents); err != nil {
		s.logger.Error("failed to dispatch notifications", zap.Error(err))
	}
}
