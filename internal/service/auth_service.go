package service

import (
	"errors"
	"strings"

	"medlink/config"
	"medlink/internal/auth"
	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.Role
	Address  string
	City     string
	State    string
	Pincode  string
	Profile  map[string]interface{}
}

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	log      *zap.Logger
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, log *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the identity row and the role's profile. Admins are seeded, never registered.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, error) {
	if in.Role == domain.RoleAdmin {
		return nil, "", ErrRoleNotAllowed
	}
	profile := models.NewProfile(in.Role)
	if profile == nil {
		return nil, "", ErrInvalidRole
	}
	email := normalizeEmail(in.Email)
	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailExists
	}
	fields, err := ProfileFields(in.Role, in.Profile)
	if err != nil {
		return nil, "", err
	}
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(b, profile); err != nil {
			return nil, "", ErrInvalidInput
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	code, err := auth.GenerateUserCode(in.Name, s.userRepo.UserCodeExists)
	if err != nil {
		return nil, "", err
	}
	status := domain.VerificationPending
	if in.Role == domain.RolePatient {
		status = domain.VerificationVerified
	}
	u := &models.User{
		UserCode:           code,
		Name:               strings.TrimSpace(in.Name),
		Email:              email,
		PasswordHash:       string(hash),
		Phone:              in.Phone,
		Address:            in.Address,
		City:               in.City,
		State:              in.State,
		Pincode:            in.Pincode,
		Role:               in.Role,
		VerificationStatus: status,
	}
	if err := s.userRepo.CreateWithProfile(u, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken, _ := s.userRepo.EmailExists(email); taken {
				return nil, "", ErrEmailExists
			}
		}
		return nil, "", err
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	token, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	created, err := s.userRepo.GetWithProfile(u.ID)
	if err != nil {
		return u, token, nil
	}
	return created, token, nil
}

// Login fails with ErrInvalidCreds for both unknown emails and wrong passwords.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if u.PasswordHash == "" {
		return nil, "", ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	token, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Token(u *models.User) (string, error) {
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Role, u.VerificationStatus)
}

// LoginWithGoogle signs in an existing account whose email Google has verified.
func (s *AuthService) LoginWithGoogle(email, avatarURL string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAccountNotFound
		}
		return nil, "", err
	}
	if u.AvatarURL == "" && avatarURL != "" {
		if err := s.userRepo.UpdateSelf(u.ID, u.Role, map[string]interface{}{"avatar_url": avatarURL}, nil); err == nil {
			u.AvatarURL = avatarURL
		}
	}
	token, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Me(userID uint) (*models.User, error) {
	u, err := s.userRepo.GetWithProfile(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.PasswordHash == "" {
		return ErrNoPasswordSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, string(hash))
}

func (s *AuthService) RegisterFCMToken(userID uint, token string) error {
	return s.userRepo.UpdateFCMToken(userID, strings.TrimSpace(token))
}
