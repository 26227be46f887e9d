package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/tulendi/cafe-directory/internal/audit"
	"github.com/tulendi/cafe-directory/internal/models"
	"github.com/tulendi/cafe-directory/internal/repository"
	"github.com/tulendi/cafe-directory/internal/utils"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type AuthService struct {
	userRepo *repository.UserRepository
	trail    *audit.Trail

	// Shared secret for the login-time admin-promotion side channel.
	// Empty disables promotion.
	promotionCode string
}

func NewAuthService(userRepo *repository.UserRepository, trail *audit.Trail, promotionCode string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		trail:         trail,
		promotionCode: promotionCode,
	}
}

func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := s.validateRegisterInput(username, email, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}
	if existingUser != nil {
		logger.Log.Warn("Email already exists",
			zap.String("email", email),
		)
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser, // Default role
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// Login verifies credentials and reports whether the caller was
// promoted to admin via the secret-code side channel. Promotion is
// persisted before the session is established; the role never goes
// back from admin.
func (s *AuthService) Login(email, password, secretCode string) (*models.User, bool, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, false, err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, false, ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, false, err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", email),
			zap.Uint("user_id", user.ID),
		)
		return nil, false, ErrInvalidCredentials
	}

	promoted := false
	if s.promotionCode != "" && secretCode == s.promotionCode && user.Role != models.RoleAdmin {
		if err := s.userRepo.UpdateRole(user.ID, models.RoleAdmin); err != nil {
			logger.Log.Error("Failed to promote user to admin",
				zap.Uint("user_id", user.ID),
				zap.Error(err),
			)
			return nil, false, err
		}
		user.Role = models.RoleAdmin
		promoted = true

		if err := s.trail.Record(audit.Entry{
			Action:   audit.ActionAdminPromotion,
			ActorID:  user.ID,
			Target:   "user",
			TargetID: user.ID,
			Detail:   "promoted via login secret code",
		}); err != nil {
			logger.Log.Error("Failed to audit admin promotion",
				zap.Uint("user_id", user.ID),
				zap.Error(err),
			)
		}

		logger.Log.Info("User promoted to admin",
			zap.Uint("user_id", user.ID),
			zap.String("username", user.Username),
		)
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, promoted, nil
}

// DeleteUser hard-deletes a user. Authored cafes stay in the directory
// with their author reference nulled out.
func (s *AuthService) DeleteUser(id uint, adminID uint) error {
	logger.Log.Info("Deleting user",
		zap.Uint("user_id", id),
		zap.Uint("admin_id", adminID),
	)

	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		logger.Log.Error("Failed to look up user for deletion",
			zap.Uint("user_id", id),
			zap.Error(err),
		)
		return err
	}
	if user == nil {
		logger.Log.Warn("User to delete not found",
			zap.Uint("user_id", id),
		)
		return ErrUserNotFound
	}

	if err := s.userRepo.DeleteUser(id); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.Uint("user_id", id),
			zap.Error(err),
		)
		return err
	}

	if err := s.trail.Record(audit.Entry{
		Action:   audit.ActionUserDeleted,
		ActorID:  adminID,
		Target:   "user",
		TargetID: id,
		Detail:   user.Email,
	}); err != nil {
		logger.Log.Error("Failed to audit user deletion",
			zap.Uint("user_id", id),
			zap.Error(err),
		)
	}

	logger.Log.Info("User deleted successfully",
		zap.Uint("user_id", id),
		zap.Uint("admin_id", adminID),
	)

	return nil
}

// GetUserByID resolves a user, or nil when absent.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.GetUserByID(id)
}

func (s *AuthService) validateRegisterInput(username, email, password string) error {
	// Username validation
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 100 {
		return errors.New("username must be at most 100 characters")
	}

	// Email validation (regex)
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	if len(email) > 100 {
		return errors.New("email too long")
	}

	// Password validation
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.New("password too long")
	}

	return nil
}
