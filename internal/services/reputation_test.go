package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamup/internal/domain"
)

func newReputationFixture() (domain.ReputationService, *fakeFeedbackRepo, *fakeLedgerRepo, *fakeTx) {
	feedback := newFakeFeedbackRepo()
	ledger := &fakeLedgerRepo{}
	tx := &fakeTx{}
	return NewReputationService(feedback, ledger, tx, time.Second), feedback, ledger, tx
}

func TestReputationService_GiveFeedback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		raterID   string
		ratedID   string
		attribute string
		concluded bool
		wantErr   error
	}{
		{name: "self feedback", raterID: "u1", ratedID: "u1", attribute: "friendly", concluded: true, wantErr: domain.ErrSelfFeedback},
		{name: "unknown attribute", raterID: "u1", ratedID: "u2", attribute: "heroic", concluded: true, wantErr: domain.ErrUnknownAttribute},
		{name: "not concluded", raterID: "u1", ratedID: "u2", attribute: "friendly", wantErr: domain.ErrNotConcluded},
		{name: "missing rated user", raterID: "u1", attribute: "friendly", concluded: true, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, feedback, ledger, _ := newReputationFixture()
			if tt.concluded {
				ledger.concludeInLedger("ev-1")
			}
			_, err := svc.GiveFeedback(ctx, tt.raterID, "ev-1", tt.ratedID, tt.attribute)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, feedback.rows)
		})
	}

	t.Run("duplicate rejected without a second increment", func(t *testing.T) {
		svc, feedback, ledger, tx := newReputationFixture()
		ledger.concludeInLedger("ev-1")

		rep, err := svc.GiveFeedback(ctx, "u1", "ev-1", "u2", "good_teammate")
		require.NoError(t, err)
		assert.Equal(t, 73, rep.Score)
		assert.Equal(t, 1, rep.GoodTeammateCount)
		assert.Equal(t, 1, tx.calls)

		_, err = svc.GiveFeedback(ctx, "u1", "ev-1", "u2", "good_teammate")
		require.ErrorIs(t, err, domain.ErrDuplicateFeedback)
		assert.Len(t, feedback.rows, 1)
		assert.Equal(t, 1, feedback.reputations["u2"].GoodTeammateCount)
		assert.Equal(t, 73, feedback.reputations["u2"].Score)

		// a different attribute from the same rater is accepted
		rep, err = svc.GiveFeedback(ctx, "u1", "ev-1", "u2", "friendly")
		require.NoError(t, err)
		assert.Equal(t, 76, rep.Score)
	})

	t.Run("score is clamped", func(t *testing.T) {
		svc, _, ledger, _ := newReputationFixture()
		var rep *domain.UserReputation
		for i := range 20 {
			eventID := "ev-" + string(rune('a'+i))
			ledger.concludeInLedger(eventID)
			var err error
			rep, err = svc.GiveFeedback(ctx, "u1", eventID, "u2", "toxic")
			require.NoError(t, err)
			require.GreaterOrEqual(t, rep.Score, domain.MinReputationScore)
			if i == 4 {
				assert.Equal(t, 45, rep.Score)
			}
		}
		assert.Equal(t, 0, rep.Score)
		assert.Equal(t, 20, rep.ToxicCount)
	})
}

func TestReputationService_ShowReputation(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults for unknown user", func(t *testing.T) {
		svc, _, _, _ := newReputationFixture()
		view, err := svc.ShowReputation(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultReputationScore, view.Score)
		assert.Equal(t, "nobody", view.UserID)
		assert.Empty(t, view.Badges)
		assert.NotNil(t, view.Badges)
	})

	t.Run("badges derived on read", func(t *testing.T) {
		svc, feedback, _, _ := newReputationFixture()
		feedback.reputations["u2"] = &domain.UserReputation{UserID: "u2", Score: 92, FriendlyCount: 5, AFKCount: 3}
		view, err := svc.ShowReputation(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{domain.BadgeFriendly, domain.BadgeAFKWarning, domain.BadgeEliteReputation}, view.Badges)
	})
}
