package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medlink/internal/cache"
	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	settingsCacheKey = "reward_settings"
	settingsCacheTTL = 10 * time.Minute
)

type ReferralInput struct {
	ReferredID   uint
	ReferredRole domain.Role
	ServiceType  string
	PatientID    *uint
	Notes        string
}

type RewardSummary struct {
	RewardPoints int64                      `json:"reward_points"`
	Recent       []models.RewardTransaction `json:"recent_transactions"`
}

// RewardService owns the points ledger, referrals and reward settings. Every award writes
// one ledger row and moves users.reward_points by the same amount in one transaction.
type RewardService struct {
	db        *gorm.DB
	users     *repository.UserRepository
	referrals *repository.ReferralRepository
	rewards   *repository.RewardRepository
	settings  *repository.SettingRepository
	cache     cache.Cache
	notifier  Notifier
	log       *zap.Logger
}

func NewRewardService(
	db *gorm.DB,
	users *repository.UserRepository,
	referrals *repository.ReferralRepository,
	rewards *repository.RewardRepository,
	settings *repository.SettingRepository,
	c cache.Cache,
	notifier Notifier,
	log *zap.Logger,
) *RewardService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &RewardService{
		db:        db,
		users:     users,
		referrals: referrals,
		rewards:   rewards,
		settings:  settings,
		cache:     c,
		notifier:  notifier,
		log:       log,
	}
}

// Setting returns the stored value for key, or def when it was never set.
func (s *RewardService) Setting(key string, def int64) (int64, error) {
	ctx := context.Background()
	var all map[string]int64
	ok, err := s.cache.Get(ctx, settingsCacheKey, &all)
	if err != nil {
		s.log.Warn("reward settings cache read failed", zap.Error(err))
	}
	if !ok {
		list, err := s.settings.GetAll()
		if err != nil {
			return 0, err
		}
		all = make(map[string]int64, len(list))
		for _, st := range list {
			all[st.Key] = st.Value
		}
		if err := s.cache.Set(ctx, settingsCacheKey, all, settingsCacheTTL); err != nil {
			s.log.Warn("reward settings cache write failed", zap.Error(err))
		}
	}
	if v, ok := all[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s *RewardService) Settings() ([]models.RewardSetting, error) {
	return s.settings.GetAll()
}

func isKnownSetting(key string) bool {
	if _, ok := domain.DefaultRewardSettings[key]; ok {
		return true
	}
	return strings.HasPrefix(key, domain.SettingServiceReferralPrefix) && len(key) > len(domain.SettingServiceReferralPrefix)
}

func (s *RewardService) UpdateSetting(key string, value int64) (*models.RewardSetting, error) {
	if !isKnownSetting(key) {
		return nil, ErrSettingNotFound
	}
	if value < 0 {
		return nil, ErrInvalidInput
	}
	if err := s.settings.Set(key, value); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(context.Background(), settingsCacheKey); err != nil {
		s.log.Warn("reward settings cache invalidation failed", zap.Error(err))
	}
	return s.settings.Get(key)
}

// CreateReferral records a PENDING referral. A pair of users shares at most one standard
// referral, so completing it is the only point award the pair can earn from each other.
func (s *RewardService) CreateReferral(referrer domain.Principal, in ReferralInput) (*models.Referral, error) {
	if in.ReferredID == referrer.ID {
		return nil, ErrSelfReferral
	}
	ok, err := s.users.Exists(in.ReferredID, in.ReferredRole)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReferredNotFound
	}
	if in.PatientID != nil {
		ok, err := s.users.Exists(*in.PatientID, domain.RolePatient)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPatientNotFound
		}
	}
	points, err := s.Setting(domain.SettingReferralDefaultPoints, domain.DefaultReferralPoints)
	if err != nil {
		return nil, err
	}
	ref := &models.Referral{
		ReferrerID:    referrer.ID,
		ReferrerRole:  referrer.Role,
		ReferredID:    in.ReferredID,
		ReferredRole:  in.ReferredRole,
		Status:        domain.ReferralStatusPending,
		PointsAwarded: points,
		PatientID:     in.PatientID,
		Notes:         in.Notes,
	}
	if st := strings.ToUpper(strings.TrimSpace(in.ServiceType)); st != "" {
		ref.ServiceType = &st
	}
	ref.SetPairKey()
	if err := s.referrals.Create(ref); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReferralExists
		}
		return nil, err
	}
	return ref, nil
}

// CompleteReferral credits the referral exactly once. The PENDING check, the status change
// and both awards commit together; a second call fails with ErrReferralNotPending.
func (s *RewardService) CompleteReferral(actor domain.Principal, id uint) (*models.Referral, error) {
	ref, err := s.referrals.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReferralNotFound
	}
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != ref.ReferredID {
		return nil, ErrForbidden
	}

	type credit struct {
		to     domain.Principal
		points int64
	}
	var credits []credit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		changed, err := s.referrals.WithTx(tx).MarkCompleted(id, time.Now())
		if err != nil {
			return err
		}
		if !changed {
			return ErrReferralNotPending
		}
		if ref.IsServiceReferral() {
			key := domain.SettingServiceReferralPrefix + *ref.ServiceType
			points, err := s.settings.WithTx(tx).GetOrCreate(key, domain.DefaultServiceReferralPoints,
				fmt.Sprintf("Points for a completed %s service referral", *ref.ServiceType))
			if err != nil {
				return err
			}
			if err := s.referrals.WithTx(tx).SetPointsAwarded(id, points); err != nil {
				return err
			}
			credits = append(credits, credit{ref.ReferrerPrincipal(), points})
			return s.AwardPointsTx(tx, ref.ReferrerPrincipal(), points, domain.TxTypeServiceReferral,
				fmt.Sprintf("Service referral (%s) completed", *ref.ServiceType), &ref.ID)
		}
		for _, p := range []domain.Principal{ref.ReferrerPrincipal(), ref.ReferredPrincipal()} {
			if err := s.AwardPointsTx(tx, p, ref.PointsAwarded, domain.TxTypeReferral, "Referral completed", &ref.ID); err != nil {
				return err
			}
			credits = append(credits, credit{p, ref.PointsAwarded})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// a new settings row may have been created above
	_ = s.cache.Delete(context.Background(), settingsCacheKey)

	s.log.Info("referral completed", zap.Uint("referral_id", id), zap.Int("credits", len(credits)))
	for _, c := range credits {
		notify(s.notifier, s.log, c.to.ID, domain.NotificationPointsAwarded, "Points awarded",
			fmt.Sprintf("You earned %d points for a completed referral", c.points),
			map[string]interface{}{"referral_id": id, "points": c.points})
	}
	return s.referrals.GetByID(id)
}

// AwardPointsTx writes the ledger row and moves the counter inside tx.
func (s *RewardService) AwardPointsTx(tx *gorm.DB, to domain.Principal, points int64, txType, description string, referralID *uint) error {
	err := s.rewards.WithTx(tx).Award(&models.RewardTransaction{
		UserID:          to.ID,
		UserRole:        to.Role,
		Points:          points,
		TransactionType: txType,
		Description:     description,
		ReferralID:      referralID,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *RewardService) AwardPoints(to domain.Principal, points int64, txType, description string, referralID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.AwardPointsTx(tx, to, points, txType, description, referralID)
	})
}

// AdminAdjust credits (or debits, for negative points) a user's balance.
func (s *RewardService) AdminAdjust(userID uint, points int64, description string) (*models.User, error) {
	if points == 0 {
		return nil, ErrInvalidInput
	}
	u, err := s.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = "Admin adjustment"
	}
	if err := s.AwardPoints(u.Principal(), points, domain.TxTypeAdminAdjustment, description, nil); err != nil {
		return nil, err
	}
	return s.users.GetByID(userID)
}

func (s *RewardService) Summary(userID uint) (*RewardSummary, error) {
	u, err := s.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	recent, _, err := s.rewards.ListTransactions(userID, 1, 10)
	if err != nil {
		return nil, err
	}
	return &RewardSummary{RewardPoints: u.RewardPoints, Recent: recent}, nil
}

func (s *RewardService) Transactions(userID uint, page, limit int) ([]models.RewardTransaction, int64, error) {
	return s.rewards.ListTransactions(userID, page, limit)
}

func (s *RewardService) MyReferrals(userID uint) ([]models.Referral, error) {
	return s.referrals.ListForUser(userID)
}

func (s *RewardService) ListReferrals(status string, page, limit int) ([]models.Referral, int64, error) {
	return s.referrals.List(status, page, limit)
}
