package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// DefaultStreakKey is the storage key of a single-player streak record.
const DefaultStreakKey = "daily-quiz-streak"

const (
	weekStreak      = 7
	monthStreak     = 30
	speedDemonLimit = 60
	centuryCount    = 100
)

// Storage is a string-keyed blob store holding streak records.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// StreakKey derives the storage key of a player's streak record.
func StreakKey(prefix, playerID string) string {
	if prefix == "" {
		prefix = DefaultStreakKey
	}
	if playerID == "" {
		return prefix
	}
	return prefix + ":" + playerID
}

var badgeCatalog = []domain.Badge{
	{ID: domain.BadgeBeginner, Name: "Beginner", Description: "Complete your first quiz", Emoji: "🎯"},
	{ID: domain.BadgePerfectScore, Name: "Perfect Score", Description: "Get 100% on any quiz", Emoji: "💯"},
	{ID: domain.BadgeWeekWarrior, Name: "Week Warrior", Description: "Maintain a 7-day streak", Emoji: "🔥"},
	{ID: domain.BadgeMonthMaster, Name: "Month Master", Description: "Maintain a 30-day streak", Emoji: "👑"},
	{ID: domain.BadgeSpeedDemon, Name: "Speed Demon", Description: "Perfect score in under 60 seconds", Emoji: "⚡"},
	{ID: domain.BadgeCenturyClub, Name: "Century Club", Description: "Complete 100 quizzes", Emoji: "💎"},
}

// StreakTracker keeps the daily streak, completed results and badges of one
// player. The record is read once at construction and written back after
// every mutation. Storage failures are logged and never returned: a broken
// store degrades to an empty in-memory record.
type StreakTracker struct {
	storage Storage
	key     string
	log     logrus.FieldLogger
	now     func() time.Time

	mu   sync.Mutex
	data domain.StreakData
}

// NewStreakTracker loads the record stored under key.
func NewStreakTracker(ctx context.Context, storage Storage, key string, log logrus.FieldLogger) *StreakTracker {
	return NewStreakTrackerWithClock(ctx, storage, key, log, time.Now)
}

// NewStreakTrackerWithClock allows deterministic calendar dates in tests.
func NewStreakTrackerWithClock(ctx context.Context, storage Storage, key string, log logrus.FieldLogger, now func() time.Time) *StreakTracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &StreakTracker{
		storage: storage,
		key:     key,
		log:     log.WithField("streak_key", key),
		now:     now,
	}
	t.data = t.load(ctx)
	return t
}

func (t *StreakTracker) load(ctx context.Context) domain.StreakData {
	raw, err := t.storage.Get(ctx, t.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			t.log.WithError(err).Error("failed to load streak data")
		}
		return domain.NewStreakData()
	}
	data, err := decodeStreakData(raw)
	if err != nil {
		t.log.WithError(err).Error("discarding invalid streak data")
		return domain.NewStreakData()
	}
	return data
}

func (t *StreakTracker) saveLocked(ctx context.Context) {
	raw, err := json.Marshal(t.data)
	if err != nil {
		t.log.WithError(err).Error("failed to encode streak data")
		return
	}
	if err := t.storage.Set(ctx, t.key, raw); err != nil {
		t.log.WithError(err).Error("failed to save streak data")
	}
}

// decodeStreakData rejects blobs missing any field of the record or holding
// the wrong JSON type for it.
func decodeStreakData(raw []byte) (domain.StreakData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.StreakData{}, err
	}
	if fields == nil {
		return domain.StreakData{}, errors.New("streak data is null")
	}
	for _, name := range []string{"currentStreak", "longestStreak", "lastPlayedDate", "totalCompleted", "results", "badges"} {
		if _, ok := fields[name]; !ok {
			return domain.StreakData{}, fmt.Errorf("streak data missing %s", name)
		}
	}
	if string(fields["results"]) == "null" || string(fields["badges"]) == "null" {
		return domain.StreakData{}, errors.New("streak data has null collections")
	}

	var data domain.StreakData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.StreakData{}, err
	}
	return data, nil
}

func (t *StreakTracker) today() string {
	return t.now().Format(time.DateOnly)
}

func (t *StreakTracker) yesterday() string {
	return t.now().AddDate(0, 0, -1).Format(time.DateOnly)
}

// RecordCompletion stores result for quizID and updates the streak, totals
// and badges. Recording a quiz that already has a result only replaces the
// stored result.
func (t *StreakTracker) RecordCompletion(ctx context.Context, quizID string, result domain.QuizResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, played := t.data.Results[quizID]; played {
		t.data.Results[quizID] = result
		t.saveLocked(ctx)
		return
	}

	today := t.today()
	t.data.Results[quizID] = result
	t.data.TotalCompleted++

	switch {
	case t.data.LastPlayedDate == nil:
		t.data.CurrentStreak = 1
	case *t.data.LastPlayedDate == today:
		// same day: streak unchanged
	case consecutiveDays(*t.data.LastPlayedDate, today):
		t.data.CurrentStreak++
	default:
		t.data.CurrentStreak = 1
	}

	if t.data.CurrentStreak > t.data.LongestStreak {
		t.data.LongestStreak = t.data.CurrentStreak
	}
	t.data.LastPlayedDate = &today

	t.awardBadgesLocked(result)
	t.saveLocked(ctx)
}

func (t *StreakTracker) awardBadgesLocked(result domain.QuizResult) {
	if t.data.TotalCompleted == 1 {
		t.awardLocked(domain.BadgeBeginner)
	}
	if result.Perfect() {
		t.awardLocked(domain.BadgePerfectScore)
	}
	if t.data.CurrentStreak >= weekStreak {
		t.awardLocked(domain.BadgeWeekWarrior)
	}
	if t.data.CurrentStreak >= monthStreak {
		t.awardLocked(domain.BadgeMonthMaster)
	}
	if result.Perfect() && result.TimeSeconds < speedDemonLimit {
		t.awardLocked(domain.BadgeSpeedDemon)
	}
	if t.data.TotalCompleted >= centuryCount {
		t.awardLocked(domain.BadgeCenturyClub)
	}
}

func (t *StreakTracker) awardLocked(badge domain.BadgeType) {
	if t.hasBadgeLocked(badge) {
		return
	}
	t.data.Badges = append(t.data.Badges, badge)
	t.log.WithField("badge", badge).Info("badge unlocked")
}

func (t *StreakTracker) hasBadgeLocked(badge domain.BadgeType) bool {
	for _, b := range t.data.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// consecutiveDays reports whether two YYYY-MM-DD dates are one calendar day apart.
func consecutiveDays(a, b string) bool {
	da, err := time.Parse(time.DateOnly, a)
	if err != nil {
		return false
	}
	db, err := time.Parse(time.DateOnly, b)
	if err != nil {
		return false
	}
	diff := db.Sub(da)
	if diff < 0 {
		diff = -diff
	}
	return diff == 24*time.Hour
}

// CurrentStreak is the stored streak if the player last played today or
// yesterday, otherwise 0. The stored value is left as is.
func (t *StreakTracker) CurrentStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentStreakLocked()
}

func (t *StreakTracker) currentStreakLocked() int {
	if t.data.LastPlayedDate == nil {
		return 0
	}
	last := *t.data.LastPlayedDate
	if last == t.today() || last == t.yesterday() {
		return t.data.CurrentStreak
	}
	return 0
}

func (t *StreakTracker) LongestStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.LongestStreak
}

func (t *StreakTracker) TotalCompleted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.TotalCompleted
}

// Results returns a copy of every stored result keyed by quiz id.
func (t *StreakTracker) Results() map[string]domain.QuizResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]domain.QuizResult, len(t.data.Results))
	for id, r := range t.data.Results {
		out[id] = r
	}
	return out
}

func (t *StreakTracker) Result(quizID string) (domain.QuizResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.data.Results[quizID]
	return r, ok
}

func (t *StreakTracker) HasCompleted(quizID string) bool {
	_, ok := t.Result(quizID)
	return ok
}

// Badges lists every badge with its unlock status.
func (t *StreakTracker) Badges() []domain.Badge {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.badgesLocked()
}

func (t *StreakTracker) badgesLocked() []domain.Badge {
	out := make([]domain.Badge, len(badgeCatalog))
	for i, b := range badgeCatalog {
		b.Unlocked = t.hasBadgeLocked(b.ID)
		out[i] = b
	}
	return out
}

// UnlockedBadges lists only the badges already earned.
func (t *StreakTracker) UnlockedBadges() []domain.Badge {
	var out []domain.Badge
	for _, b := range t.Badges() {
		if b.Unlocked {
			out = append(out, b)
		}
	}
	return out
}

// IsStreakAtRisk reports a live streak that has not been extended today.
func (t *StreakTracker) IsStreakAtRisk() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.atRiskLocked()
}

func (t *StreakTracker) atRiskLocked() bool {
	if t.data.CurrentStreak == 0 {
		return false
	}
	return t.data.LastPlayedDate == nil || *t.data.LastPlayedDate != t.today()
}

func (t *StreakTracker) Stats() domain.StreakStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.StreakStats{
		CurrentStreak:  t.currentStreakLocked(),
		LongestStreak:  t.data.LongestStreak,
		TotalCompleted: t.data.TotalCompleted,
		Badges:         t.badgesLocked(),
		StreakAtRisk:   t.atRiskLocked(),
	}
}

// Snapshot returns a copy of the raw stored record.
func (t *StreakTracker) Snapshot() domain.StreakData {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.data
	out.Results = make(map[string]domain.QuizResult, len(t.data.Results))
	for id, r := range t.data.Results {
		out.Results[id] = r
	}
	out.Badges = append([]domain.BadgeType{}, t.data.Badges...)
	if t.data.LastPlayedDate != nil {
		last := *t.data.LastPlayedDate
		out.LastPlayedDate = &last
	}
	return out
}

// Reset clears the record and persists the empty state.
func (t *StreakTracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = domain.NewStreakData()
	t.saveLocked(ctx)
}
