package service

import (
	"sync"
	"testing"

	"medlink/internal/cache"
	"medlink/internal/repository"
	"medlink/internal/testutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentNotification struct {
	UserID uint
	Type   string
	Data   map[string]interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(userID uint, notifType, _, _ string, data map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Type: notifType, Data: data})
	return nil
}

func (r *recordingNotifier) count(notifType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Type == notifType {
			n++
		}
	}
	return n
}

type fixture struct {
	db       *gorm.DB
	notifier *recordingNotifier
	users    *repository.UserRepository
	assign   *repository.AssignmentRepository
	rewards  *RewardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(testutil.NewTestDB(t))
}

// newConcurrentFixture backs the services with a multi-connection database for race tests.
func newConcurrentFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(testutil.NewConcurrentTestDB(t))
}

func fixtureOn(db *gorm.DB) *fixture {
	n := &recordingNotifier{}
	users := repository.NewUserRepository(db)
	rewards := NewRewardService(db, users,
		repository.NewReferralRepository(db),
		repository.NewRewardRepository(db),
		repository.NewSettingRepository(db),
		cache.NewMemory(), n, zap.NewNop())
	return &fixture{
		db:       db,
		notifier: n,
		users:    users,
		assign:   repository.NewAssignmentRepository(db),
		rewards:  rewards,
	}
}
