package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"teamup/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	start := min(params.Offset(), len(out))
	end := min(start+params.Limit(), len(out))
	return out[start:end], len(out), nil
}

func (f *fakeEventRepo) ListInProgressStartedBefore(ctx context.Context, before time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if !e.IsConcluded() && e.StartsAt.Before(before) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.SportID != nil {
		e.SportID = *patch.SportID
	}
	if patch.StartsAt != nil {
		e.StartsAt = *patch.StartsAt
	}
	if patch.Place != nil {
		e.Place = *patch.Place
	}
	if patch.MaxParticipants != nil {
		e.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Latitude != nil {
		e.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		e.Longitude = patch.Longitude
	}
	if patch.Weather != nil {
		e.Weather = patch.Weather
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) MarkConcluded(ctx context.Context, id string) (bool, error) {
	e, ok := f.byID[id]
	if !ok || e.IsConcluded() {
		return false, nil
	}
	e.Status = domain.EventStatusConcluded
	return true, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository keyed by event then user.
type fakeParticipantRepo struct {
	rows    map[string][]*domain.Participant
	listErr error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{rows: make(map[string][]*domain.Participant)}
}

func (f *fakeParticipantRepo) Add(ctx context.Context, p *domain.Participant) error {
	for _, existing := range f.rows[p.EventID] {
		if existing.UserID == p.UserID {
			return domain.ErrAlreadyJoined
		}
	}
	f.rows[p.EventID] = append(f.rows[p.EventID], p)
	return nil
}

func (f *fakeParticipantRepo) Get(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	for _, p := range f.rows[eventID] {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Participant, len(f.rows[eventID]))
	copy(out, f.rows[eventID])
	return out, nil
}

func (f *fakeParticipantRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	return len(f.rows[eventID]), nil
}

func (f *fakeParticipantRepo) Remove(ctx context.Context, eventID, userID string) error {
	rows := f.rows[eventID]
	for i, p := range rows {
		if p.UserID == userID {
			f.rows[eventID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) SetRating(ctx context.Context, eventID, userID string, rating float64) error {
	p, err := f.Get(ctx, eventID, userID)
	if err != nil {
		return err
	}
	p.Rating = &rating
	return nil
}

// fakeTx runs fn directly; it counts calls so tests can assert transactional paths.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type publishedFact struct {
	Queue string
	Fact  domain.LifecycleFact
}

// fakePublisher records published facts; when err is set every publish fails.
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedFact
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, queue string, fact domain.LifecycleFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedFact{Queue: queue, Fact: fact})
	return nil
}

func (f *fakePublisher) queues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.published))
	for _, p := range f.published {
		out = append(out, p.Queue)
	}
	return out
}

func (f *fakePublisher) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = nil
}

type fakeWeather struct {
	snapshot *domain.WeatherSnapshot
	err      error
	calls    int
}

func (f *fakeWeather) Forecast(ctx context.Context, lat, lng float64, at time.Time) (*domain.WeatherSnapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

// fakeLedgerRepo is an in-memory LedgerRepository with message-id dedup.
type fakeLedgerRepo struct {
	entries []*domain.LedgerEntry
	err     error
}

func (f *fakeLedgerRepo) Append(ctx context.Context, e *domain.LedgerEntry) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, existing := range f.entries {
		if existing.MessageID == e.MessageID {
			return false, nil
		}
	}
	f.entries = append(f.entries, e)
	return true, nil
}

func (f *fakeLedgerRepo) HasConcludedMarker(ctx context.Context, eventID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, e := range f.entries {
		if e.EventID == eventID && e.IsConcludedMarker() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedgerRepo) DeleteByEventID(ctx context.Context, eventID string) (int64, error) {
	var kept []*domain.LedgerEntry
	var n int64
	for _, e := range f.entries {
		if e.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

// concludeInLedger stores the sentinel for eventID.
func (f *fakeLedgerRepo) concludeInLedger(eventID string) {
	f.entries = append(f.entries, &domain.LedgerEntry{
		MessageID: "concluded-" + eventID,
		EventID:   eventID,
		Kind:      domain.LedgerKindConcluded,
		Message:   domain.ConcludedLedgerMessage,
	})
}

// fakeFeedbackRepo stores feedback rows and applies reputation the way the SQL upsert does.
type fakeFeedbackRepo struct {
	rows        []*domain.EventFeedback
	reputations map[string]*domain.UserReputation
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{reputations: make(map[string]*domain.UserReputation)}
}

func (f *fakeFeedbackRepo) Insert(ctx context.Context, fb *domain.EventFeedback) error {
	for _, r := range f.rows {
		if r.EventID == fb.EventID && r.RaterID == fb.RaterID && r.RatedID == fb.RatedID && r.Attribute == fb.Attribute {
			return domain.ErrDuplicateFeedback
		}
	}
	f.rows = append(f.rows, fb)
	return nil
}

func (f *fakeFeedbackRepo) ApplyToReputation(ctx context.Context, userID string, a domain.Attribute) (*domain.UserReputation, error) {
	rep, ok := f.reputations[userID]
	if !ok {
		rep = domain.NewUserReputation(userID)
		f.reputations[userID] = rep
	}
	rep.Apply(a)
	cp := *rep
	return &cp, nil
}

func (f *fakeFeedbackRepo) GetReputation(ctx context.Context, userID string) (*domain.UserReputation, error) {
	rep, ok := f.reputations[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

// fakeRatingRepo computes averages from stored rows. Insert refuses to run for a
// rated user whose lock was not taken first.
type fakeRatingRepo struct {
	rows     []*domain.EventRating
	averages map[string]*domain.UserAverage
	locked   []string
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{averages: make(map[string]*domain.UserAverage)}
}

func (f *fakeRatingRepo) LockRatedUser(ctx context.Context, ratedID string) error {
	f.locked = append(f.locked, ratedID)
	return nil
}

func (f *fakeRatingRepo) Insert(ctx context.Context, r *domain.EventRating) error {
	if len(f.locked) == 0 || f.locked[len(f.locked)-1] != r.RatedID {
		return errors.New("rating inserted without holding the rated user lock")
	}
	for _, existing := range f.rows {
		if existing.EventID == r.EventID && existing.RaterID == r.RaterID && existing.RatedID == r.RatedID {
			return domain.ErrDuplicateRating
		}
	}
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeRatingRepo) EventAverage(ctx context.Context, eventID, ratedID string) (float64, error) {
	sum, n := 0, 0
	for _, r := range f.rows {
		if r.EventID == eventID && r.RatedID == ratedID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (f *fakeRatingRepo) GlobalAverage(ctx context.Context, ratedID string) (float64, int, error) {
	sum, n := 0, 0
	for _, r := range f.rows {
		if r.RatedID == ratedID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (f *fakeRatingRepo) SaveUserAverage(ctx context.Context, avg *domain.UserAverage) error {
	cp := *avg
	f.averages[avg.UserID] = &cp
	return nil
}

func (f *fakeRatingRepo) GetUserAverage(ctx context.Context, userID string) (*domain.UserAverage, error) {
	avg, ok := f.averages[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return avg, nil
}

type fakeEmailService struct {
	sent []*domain.FeedbackInviteEmailData
	err  error
}

func (f *fakeEmailService) SendFeedbackInvite(ctx context.Context, data *domain.FeedbackInviteEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

var errBrokerDown = errors.New("broker unreachable")
