package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"teamup/internal/domain"
)

// queueKinds maps each drained queue to the ledger kind it produces.
var queueKinds = map[string]string{
	domain.QueueEventJoined:         domain.LedgerKindJoined,
	domain.QueueUserLeftEvent:       domain.LedgerKindLeft,
	domain.QueueNotification:        domain.LedgerKindNotification,
	domain.QueueEventConcluded:      domain.LedgerKindConcluded,
	domain.QueueReputationConcluded: domain.LedgerKindConcluded,
}

// LedgerQueues lists every queue the ledger consumer drains.
var LedgerQueues = []string{
	domain.QueueEventJoined,
	domain.QueueUserLeftEvent,
	domain.QueueNotification,
	domain.QueueEventConcluded,
	domain.QueueReputationConcluded,
	domain.QueueEventDeleted,
}

type ledgerService struct {
	ledgerRepo      domain.LedgerRepository
	participantRepo domain.ParticipantRepository
	emailService    domain.EmailService
	logger          *slog.Logger
	contextTimeout  time.Duration
	now             func() time.Time
}

// NewLedgerService returns the handler behind the queue consumers. emailService
// may be nil to disable feedback invitations.
func NewLedgerService(ledgerRepo domain.LedgerRepository,
	participantRepo domain.ParticipantRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.LedgerService {
	return &ledgerService{
		ledgerRepo:      ledgerRepo,
		participantRepo: participantRepo,
		emailService:    emailService,
		logger:          logger.With("component", "ledger"),
		contextTimeout:  timeout,
		now:             time.Now,
	}
}

// Handle persists one delivery. It is safe to call again with the same delivery:
// entries are keyed by message id. Undecodable input is reported as ErrInvalidInput.
func (s *ledgerService) Handle(ctx context.Context, d domain.Delivery) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var fact domain.LifecycleFact
	if err := json.Unmarshal(d.Body, &fact); err != nil {
		return domain.NewValidationError([]string{"body: " + err.Error()})
	}
	if fact.EventID == "" {
		return domain.NewValidationError([]string{"event_id is required"})
	}

	if d.Queue == domain.QueueEventDeleted {
		n, err := s.ledgerRepo.DeleteByEventID(ctx, fact.EventID)
		if err != nil {
			return fmt.Errorf("purge ledger: %w", err)
		}
		s.logger.InfoContext(ctx, "ledger purged", "event_id", fact.EventID, "entries", n)
		return nil
	}

	kind, ok := queueKinds[d.Queue]
	if !ok {
		return domain.NewValidationError([]string{"unknown queue " + d.Queue})
	}
	message := fact.Message
	if kind == domain.LedgerKindConcluded {
		message = domain.ConcludedLedgerMessage
	}
	entry := &domain.LedgerEntry{
		ID:        uuid.NewString(),
		MessageID: messageID(d),
		EventID:   fact.EventID,
		Kind:      kind,
		UserID:    fact.UserID,
		UserName:  fact.UserName,
		Message:   message,
		CreatedAt: s.now(),
	}
	inserted, err := s.ledgerRepo.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	if !inserted {
		s.logger.DebugContext(ctx, "duplicate delivery ignored", "queue", d.Queue, "message_id", entry.MessageID)
		return nil
	}
	if entry.IsConcludedMarker() {
		s.inviteFeedback(ctx, fact)
	}
	return nil
}

func (s *ledgerService) IsConcluded(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.ledgerRepo.HasConcludedMarker(ctx, eventID)
	if err != nil {
		return false, wrap("check ledger", err)
	}
	return ok, nil
}

// inviteFeedback e-mails every participant with a known address. Failures are
// logged only; the ledger entry is already stored.
func (s *ledgerService) inviteFeedback(ctx context.Context, fact domain.LifecycleFact) {
	if s.emailService == nil {
		return
	}
	participants, err := s.participantRepo.ListByEventID(ctx, fact.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "feedback invitations skipped", "event_id", fact.EventID, "err", err)
		return
	}
	for _, p := range participants {
		if p.UserEmail == "" {
			continue
		}
		teammates := make([]string, 0, len(participants)-1)
		for _, other := range participants {
			if other.UserID != p.UserID {
				teammates = append(teammates, other.UserName)
			}
		}
		err := s.emailService.SendFeedbackInvite(ctx, &domain.FeedbackInviteEmailData{
			Email:     p.UserEmail,
			UserName:  p.UserName,
			EventID:   fact.EventID,
			EventName: fact.EventName,
			Teammates: teammates,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "feedback invitation failed", "event_id", fact.EventID, "user_id", p.UserID, "err", err)
		}
	}
}

// messageID returns the broker message id, or a stable id derived from the ledger
// kind and body for publishers that do not set one. Both concluded queues map to
// the same kind, so one concluded fact yields one id.
func messageID(d domain.Delivery) string {
	if d.MessageID != "" {
		return d.MessageID
	}
	scope, ok := queueKinds[d.Queue]
	if !ok {
		scope = d.Queue
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, append([]byte(scope+"\n"), d.Body...)).String()
}
