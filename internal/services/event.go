package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"teamup/internal/domain"
)

const weatherUnavailable = "weather forecast unavailable"

// systemActor is attributed with conclusions made by the auto-conclusion sweep.
var systemActor = &domain.Principal{UserID: "system", Name: "TeamUP", IsAdmin: true}

type eventService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	tx              domain.TxManager
	weather         domain.WeatherProvider
	facts           *factEmitter
	logger          *slog.Logger
	contextTimeout  time.Duration
	now             func() time.Time
}

// NewEventService returns the event lifecycle manager. weather may be nil, in
// which case events are stored without a forecast.
func NewEventService(eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	tx domain.TxManager,
	weather domain.WeatherProvider,
	publisher domain.Publisher,
	logger *slog.Logger,
	timeout time.Duration,
	publishTimeout time.Duration,
) domain.EventService {
	logger = logger.With("component", "event_service")
	return &eventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		tx:              tx,
		weather:         weather,
		facts:           newFactEmitter(publisher, publishTimeout, logger),
		logger:          logger,
		contextTimeout:  timeout,
		now:             time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, owner *domain.Principal, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	now := s.now()
	event := domain.NewEvent(in.Name, in.SportID, in.StartsAt, in.Place, in.MaxParticipants, owner.UserID, owner.Name, now)
	event.Latitude, event.Longitude = in.Latitude, in.Longitude
	event.Weather, event.WeatherError = s.forecast(ctx, event.Latitude, event.Longitude, event.StartsAt)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return err
		}
		return s.participantRepo.Add(ctx, domain.NewParticipant(event.ID, owner, now))
	})
	if err != nil {
		return nil, wrap("create event", err)
	}

	s.facts.emit(ctx, domain.NewMembershipFact(event, owner.UserID, owner.Name, domain.MessageUserJoined), domain.QueueEventJoined)
	return event, nil
}

func (s *eventService) JoinEvent(ctx context.Context, eventID string, user *domain.Principal) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	participant := domain.NewParticipant(eventID, user, s.now())
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if e.IsConcluded() {
			return domain.ErrEventConcluded
		}
		if e.OwnerID == user.UserID {
			return domain.ErrSelfJoin
		}
		count, err := s.participantRepo.CountByEventID(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= e.MaxParticipants {
			return domain.ErrEventFull
		}
		event = e
		return s.participantRepo.Add(ctx, participant)
	})
	if err != nil {
		return nil, wrap("join event", err)
	}

	s.notify(ctx, event, user.UserID, user.Name, domain.MessageUserJoined)
	s.facts.emit(ctx, domain.NewMembershipFact(event, user.UserID, user.Name, domain.MessageUserJoined), domain.QueueEventJoined)
	return participant, nil
}

func (s *eventService) LeaveEvent(ctx context.Context, eventID string, user *domain.Principal) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return wrap("get event", err)
	}
	if event.OwnerID == user.UserID {
		return domain.ErrOwnerCannotLeave
	}
	if err := s.participantRepo.Remove(ctx, eventID, user.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotParticipant
		}
		return wrap("leave event", err)
	}

	s.emitDeparture(ctx, event, user.UserID, user.Name, domain.MessageUserLeft)
	return nil
}

func (s *eventService) KickParticipant(ctx context.Context, eventID, byUserID, targetUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return wrap("get event", err)
	}
	if event.OwnerID != byUserID {
		return domain.ErrForbidden
	}
	if targetUserID == event.OwnerID {
		return domain.ErrOwnerCannotLeave
	}
	target, err := s.participantRepo.Get(ctx, eventID, targetUserID)
	if err != nil {
		return wrap("get participant", err)
	}
	if err := s.participantRepo.Remove(ctx, eventID, targetUserID); err != nil {
		return wrap("kick participant", err)
	}

	s.emitDeparture(ctx, event, target.UserID, target.UserName, domain.MessageUserLeft)
	return nil
}

// emitDeparture emits the fact pair shared by leave and kick.
func (s *eventService) emitDeparture(ctx context.Context, event *domain.Event, userID, userName, message string) {
	s.facts.emit(ctx, domain.NewMembershipFact(event, userID, userName, message), domain.QueueUserLeftEvent)
	s.notify(ctx, event, userID, userName, message)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrap("get event", err)
	}
	if current.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if err := domain.NewValidationError(patch.Validate()); err != nil {
		return nil, err
	}
	if current.IsConcluded() {
		return nil, domain.ErrEventConcluded
	}
	if patch.IsEmpty() {
		return current, nil
	}

	var weatherErr string
	if patch.MovesEvent() {
		lat, lng, at := current.Latitude, current.Longitude, current.StartsAt
		if patch.Latitude != nil {
			lat = patch.Latitude
		}
		if patch.Longitude != nil {
			lng = patch.Longitude
		}
		if patch.StartsAt != nil {
			at = *patch.StartsAt
		}
		patch.Weather, weatherErr = s.forecast(ctx, lat, lng, at)
	}

	var updated *domain.Event
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if patch.MaxParticipants != nil {
			if _, err := s.eventRepo.GetByIDForUpdate(ctx, eventID); err != nil {
				return err
			}
			count, err := s.participantRepo.CountByEventID(ctx, eventID)
			if err != nil {
				return err
			}
			if *patch.MaxParticipants < count {
				return domain.ErrEventFull
			}
		}
		e, err := s.eventRepo.Update(ctx, eventID, patch)
		updated = e
		return err
	})
	if err != nil {
		return nil, wrap("update event", err)
	}
	updated.WeatherError = weatherErr

	s.notify(ctx, updated, ownerID, updated.OwnerName, domain.MessageEventUpdated)
	return updated, nil
}

func (s *eventService) ConcludeByCreator(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrap("get event", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return s.conclude(ctx, event, ownerID, event.OwnerName)
}

func (s *eventService) ConcludeByAdmin(ctx context.Context, eventID string, admin *domain.Principal) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if admin == nil || !admin.IsAdmin {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrap("get event", err)
	}
	return s.conclude(ctx, event, admin.UserID, admin.Name)
}

// ConcludeStale concludes every in-progress event that started more than olderThan
// ago and reports how many transitioned. It keeps going past individual failures.
func (s *eventService) ConcludeStale(ctx context.Context, olderThan time.Duration) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	events, err := s.eventRepo.ListInProgressStartedBefore(listCtx, s.now().Add(-olderThan))
	cancel()
	if err != nil {
		return 0, wrap("list stale events", err)
	}

	concluded := 0
	var errs []error
	for _, event := range events {
		eventCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		changed, err := s.markConcluded(eventCtx, event, systemActor.UserID, systemActor.Name)
		cancel()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed {
			concluded++
		}
	}
	return concluded, errors.Join(errs...)
}

func (s *eventService) conclude(ctx context.Context, event *domain.Event, actorID, actorName string) (*domain.Event, error) {
	if event.IsConcluded() {
		return event, nil
	}
	if _, err := s.markConcluded(ctx, event, actorID, actorName); err != nil {
		return nil, err
	}
	return event, nil
}

// markConcluded flips the status and, only when this call made the transition,
// emits the concluded facts. The same message id goes to both concluded queues.
func (s *eventService) markConcluded(ctx context.Context, event *domain.Event, actorID, actorName string) (bool, error) {
	changed, err := s.eventRepo.MarkConcluded(ctx, event.ID)
	if err != nil {
		return false, wrap("conclude event", err)
	}
	event.Status = domain.EventStatusConcluded
	if !changed {
		return false, nil
	}

	fact := domain.NewMembershipFact(event, actorID, actorName, domain.MessageEventConcluded)
	fact.MessageID = uuid.NewString()
	s.facts.emit(ctx, fact, domain.QueueEventConcluded, domain.QueueReputationConcluded)
	s.notify(ctx, event, actorID, actorName, domain.MessageEventConcluded)
	return true, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return wrap("get event", err)
	}
	if event.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return wrap("delete event", err)
	}

	s.facts.emit(ctx, domain.NewDeletedFact(eventID), domain.QueueEventDeleted)
	return nil
}

func (s *eventService) ListMyEvents(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByOwnerID(ctx, ownerID, params)
	if err != nil {
		return nil, 0, wrap("list events", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID, callerID string) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrap("get event", err)
	}
	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, wrap("list participants", err)
	}
	if event.OwnerID == callerID {
		return participants, nil
	}
	for _, p := range participants {
		if p.UserID == callerID {
			return participants, nil
		}
	}
	return nil, domain.ErrForbidden
}

// notify emits a notification fact addressed to the current participant list.
func (s *eventService) notify(ctx context.Context, event *domain.Event, userID, userName, message string) {
	participants, err := s.participantRepo.ListByEventID(context.WithoutCancel(ctx), event.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping notification, participant snapshot failed", "event_id", event.ID, "err", err)
		return
	}
	fact := domain.NewNotificationFact(event, userID, userName, message, participants, s.now())
	s.facts.emit(ctx, fact, domain.QueueNotification)
}

// forecast looks up the weather for a located event. Failures are reported as
// an advisory message instead of an error.
func (s *eventService) forecast(ctx context.Context, lat, lng *float64, at time.Time) (*domain.WeatherSnapshot, string) {
	if s.weather == nil || lat == nil || lng == nil {
		return nil, ""
	}
	w, err := s.weather.Forecast(ctx, *lat, *lng, at)
	if err != nil {
		s.logger.WarnContext(ctx, "weather lookup failed", "err", err)
		return nil, weatherUnavailable
	}
	return w, ""
}
