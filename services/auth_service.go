package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/models"
	"wink/utils"
)

type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	TeamID   *uint  `json:"team_id" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	db        *gorm.DB
	validator *utils.Validator
	tokens    *utils.TokenIssuer
	log       *logrus.Entry
}

func NewAuthService(db *gorm.DB, validator *utils.Validator, tokens *utils.TokenIssuer, log *logrus.Entry) *AuthService {
	return &AuthService{db: db, validator: validator, tokens: tokens, log: log}
}

// Signup creates a user with a hashed password and returns its id.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (uint, error) {
	in.Email = normalizeEmail(in.Email)

	errs := s.validator.Struct(in)
	if errs == nil {
		errs = utils.FieldErrors{}
	}
	if !errs.Has("email") {
		if err := checkmail.ValidateFormat(in.Email); err != nil {
			errs.Add("email", "email must be a valid email")
		}
	}

	db := s.db.WithContext(ctx)
	if !errs.Has("email") {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 {
			errs.Add("email", "user with this email already exists")
		}
	}
	if in.TeamID != nil {
		teams, err := existingTeams(db, []uint{*in.TeamID})
		if err != nil {
			return 0, err
		}
		if !teams[*in.TeamID] {
			errs.Add("team_id", "team does not exist")
		}
	}
	if !errs.Empty() {
		return 0, newValidationError(errs)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		TeamID:       in.TeamID,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fieldError("email", "user with this email already exists")
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	utils.LogEvent(s.log, "user_signed_up", map[string]interface{}{
		"user_id": user.ID,
		"team_id": *user.TeamID,
	})
	return user.ID, nil
}

// Login verifies credentials and issues a token pair. Unknown email, wrong
// password and inactive account all yield ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*utils.TokenPair, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := s.validator.Struct(in); errs != nil {
		return nil, newValidationError(errs)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// keep the response time close to that of a real check
		utils.CheckPassword(dummyHash(), in.Password)
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, in.Password) || !user.IsActive {
		return nil, ErrAuthenticationFailed
	}

	pair, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	utils.LogEvent(s.log, "user_logged_in", map[string]interface{}{"user_id": user.ID})
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	user, err := s.userFromToken(ctx, refreshToken, utils.RefreshToken)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// Authenticate resolves the user behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	return s.userFromToken(ctx, accessToken, utils.AccessToken)
}

// Logout invalidates every token issued to the user so far.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1)).Error
}

func (s *AuthService) userFromToken(ctx context.Context, token string, typ utils.TokenType) (*models.User, error) {
	claims, err := s.tokens.Parse(token, typ)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	if !user.IsActive || claims.TokenVersion != user.TokenVersion {
		return nil, ErrAuthenticationFailed
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	dummyHashOnce sync.Once
	dummyHashVal  string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		dummyHashVal, _ = utils.HashPassword("wink-dummy-password")
	})
	return dummyHashVal
}
