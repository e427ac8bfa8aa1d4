package domain

import (
	"context"
	"time"
)

// Attribute is a behavioral trait a participant can be given feedback on.
type Attribute string

const (
	AttributeGoodTeammate Attribute = "good_teammate"
	AttributeFriendly     Attribute = "friendly"
	AttributeTeamPlayer   Attribute = "team_player"
	AttributeToxic        Attribute = "toxic"
	AttributeBadSport     Attribute = "bad_sport"
	AttributeAFK          Attribute = "afk"
)

// Reputation scoring constants.
const (
	DefaultReputationScore = 70
	MinReputationScore     = 0
	MaxReputationScore     = 100
	PositiveFeedbackDelta  = 3
	NegativeFeedbackDelta  = -5
)

// Attributes lists every known attribute, positives first.
var Attributes = []Attribute{
	AttributeGoodTeammate, AttributeFriendly, AttributeTeamPlayer,
	AttributeToxic, AttributeBadSport, AttributeAFK,
}

// ParseAttribute returns ErrUnknownAttribute for anything outside Attributes.
func ParseAttribute(s string) (Attribute, error) {
	for _, a := range Attributes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", ErrUnknownAttribute
}

// IsPositive reports whether the attribute rewards the rated user.
func (a Attribute) IsPositive() bool {
	switch a {
	case AttributeGoodTeammate, AttributeFriendly, AttributeTeamPlayer:
		return true
	}
	return false
}

// Delta is the score change applied for one feedback of this attribute.
func (a Attribute) Delta() int {
	if a.IsPositive() {
		return PositiveFeedbackDelta
	}
	return NegativeFeedbackDelta
}

// ClampScore bounds a score to [MinReputationScore, MaxReputationScore].
func ClampScore(score int) int {
	if score < MinReputationScore {
		return MinReputationScore
	}
	if score > MaxReputationScore {
		return MaxReputationScore
	}
	return score
}

// EventFeedback is one (event, rater, rated, attribute) feedback row.
type EventFeedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	RaterID   string    `json:"rater_id"`
	RatedID   string    `json:"rated_id"`
	Attribute Attribute `json:"attribute"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

// UserReputation is the per-user aggregate of received feedback.
// swagger:model UserReputation
type UserReputation struct {
	UserID            string    `json:"user_id"`
	Score             int       `json:"score"`
	GoodTeammateCount int       `json:"good_teammate_count"`
	FriendlyCount     int       `json:"friendly_count"`
	TeamPlayerCount   int       `json:"team_player_count"`
	ToxicCount        int       `json:"toxic_count"`
	BadSportCount     int       `json:"bad_sport_count"`
	AFKCount          int       `json:"afk_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUserReputation returns the reputation of a user nobody has rated yet.
func NewUserReputation(userID string) *UserReputation {
	return &UserReputation{UserID: userID, Score: DefaultReputationScore}
}

// Apply adds one feedback of the given attribute to the aggregate. It mirrors the
// upsert the repository performs and is used by in-memory stores.
func (r *UserReputation) Apply(a Attribute) {
	r.Score = ClampScore(r.Score + a.Delta())
	switch a {
	case AttributeGoodTeammate:
		r.GoodTeammateCount++
	case AttributeFriendly:
		r.FriendlyCount++
	case AttributeTeamPlayer:
		r.TeamPlayerCount++
	case AttributeToxic:
		r.ToxicCount++
	case AttributeBadSport:
		r.BadSportCount++
	case AttributeAFK:
		r.AFKCount++
	}
}

// Badge names.
const (
	BadgeGoodTeammate     = "Good Teammate"
	BadgeFriendly         = "Friendly"
	BadgeTeamPlayer       = "Team Player"
	BadgeToxicWarning     = "Toxic Behavior Warning"
	BadgeBadSportWarning  = "Bad Sport Warning"
	BadgeAFKWarning       = "Frequently AFK Warning"
	BadgeEliteReputation  = "Elite Reputation"
	BadgeNeedsImprovement = "Needs Improvement"
)

// Badge thresholds.
const (
	PositiveBadgeThreshold = 5
	ToxicWarningThreshold  = 5
	MinorWarningThreshold  = 3
	EliteScoreThreshold    = 90
	LowScoreThreshold      = 40
)

// Badges derives the badge list from counters and score. Badges are never stored.
func (r *UserReputation) Badges() []string {
	badges := []string{}
	if r.GoodTeammateCount >= PositiveBadgeThreshold {
		badges = append(badges, BadgeGoodTeammate)
	}
	if r.FriendlyCount >= PositiveBadgeThreshold {
		badges = append(badges, BadgeFriendly)
	}
	if r.TeamPlayerCount >= PositiveBadgeThreshold {
		badges = append(badges, BadgeTeamPlayer)
	}
	if r.ToxicCount >= ToxicWarningThreshold {
		badges = append(badges, BadgeToxicWarning)
	}
	if r.BadSportCount >= MinorWarningThreshold {
		badges = append(badges, BadgeBadSportWarning)
	}
	if r.AFKCount >= MinorWarningThreshold {
		badges = append(badges, BadgeAFKWarning)
	}
	if r.Score >= EliteScoreThreshold {
		badges = append(badges, BadgeEliteReputation)
	}
	if r.Score <= LowScoreThreshold {
		badges = append(badges, BadgeNeedsImprovement)
	}
	return badges
}

// ReputationView is the read model returned by showReputation.
// swagger:model ReputationView
type ReputationView struct {
	*UserReputation
	Badges []string `json:"badges"`
}

// FeedbackRepository stores feedback rows and the reputation aggregate.
type FeedbackRepository interface {
	// Insert returns ErrDuplicateFeedback when the tuple already exists.
	Insert(ctx context.Context, fb *EventFeedback) error
	// ApplyToReputation upserts the rated user's aggregate: the score moves by the
	// attribute's delta from the stored value (or the default for a new row),
	// clamped, and the attribute's counter is incremented.
	ApplyToReputation(ctx context.Context, userID string, a Attribute) (*UserReputation, error)
	GetReputation(ctx context.Context, userID string) (*UserReputation, error)
}

// ReputationService is the reputation engine.
type ReputationService interface {
	GiveFeedback(ctx context.Context, raterID, eventID, ratedID, attribute string) (*UserReputation, error)
	ShowReputation(ctx context.Context, userID string) (*ReputationView, error)
}
