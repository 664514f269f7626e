package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"perplexacare/internal/domain"
	"perplexacare/internal/email"
	"perplexacare/internal/repository"
)

// UserService coordina reglas de negocio para identidad de usuarios:
// registro, login con contraseña, OAuth y recuperación de contraseña.
// En el primer registro o primer sign-in OAuth escribe el perfil de
// salud por defecto del usuario.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	emailSender  email.Sender
	resetTokens  ResetTokenStore
	resetLimiter ResetRateLimiter
	authState    *AuthState
	resetBaseURL string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthInvalid       = errors.New("oauth data invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrResetTokenInvalid  = errors.New("reset token invalid")
)

const (
	resetTokenTTL     = 30 * time.Minute
	minPasswordLength = 6
)

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	emailSender email.Sender,
	resetTokens ResetTokenStore,
	resetLimiter ResetRateLimiter,
	authState *AuthState,
	resetBaseURL string,
) *UserService {
	if resetTokens == nil {
		resetTokens = NewMemoryResetTokenStore()
	}
	if resetLimiter == nil {
		resetLimiter = NewResetRateLimiter(10*time.Minute, 3)
	}
	return &UserService{
		logger:       logger,
		users:        users,
		profiles:     profiles,
		emailSender:  emailSender,
		resetTokens:  resetTokens,
		resetLimiter: resetLimiter,
		authState:    authState,
		resetBaseURL: resetBaseURL,
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// SignUp registra un usuario con email/contraseña y crea su perfil de
// salud por defecto.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (domain.User, domain.HealthProfile, error) {
	if s.users == nil {
		return domain.User{}, domain.HealthProfile{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, domain.HealthProfile{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return domain.User{}, domain.HealthProfile{}, ErrWeakPassword
	}
	fullName := strings.TrimSpace(input.FullName)

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, domain.HealthProfile{}, ErrEmailInUse
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.HealthProfile{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, domain.HealthProfile{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		DisplayName:  fullName,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, domain.HealthProfile{}, err
	}

	profile, err := s.ensureDefaultProfile(ctx, user.ID, fullName)
	if err != nil {
		// El usuario ya existe; el perfil puede recrearse después.
		if s.logger != nil {
			s.logger.Warn("default profile write failed", zap.Error(err), zap.String("user_id", user.ID))
		}
		profile = domain.DefaultProfile(user.ID, fullName)
	}

	s.notifyCurrent(&user)
	return user, profile, nil
}

// Authenticate valida email y contraseña y devuelve el usuario.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	s.notifyCurrent(&user)
	return user, nil
}

type OAuthInput struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// UpsertOAuthUser resuelve un sign-in OAuth: reutiliza al usuario si el
// proveedor+sujeto ya está vinculado, vincula por email si existe una
// cuenta previa, o crea usuario y perfil por defecto en el primer
// sign-in.
func (s *UserService) UpsertOAuthUser(ctx context.Context, input OAuthInput) (domain.User, domain.HealthProfile, error) {
	if s.users == nil {
		return domain.User{}, domain.HealthProfile{}, errors.New("user service not configured")
	}

	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	if provider == "" || subject == "" {
		return domain.User{}, domain.HealthProfile{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		profile, perr := s.ensureDefaultProfile(ctx, user.ID, user.DisplayName)
		if perr != nil {
			return domain.User{}, domain.HealthProfile{}, perr
		}
		s.notifyCurrent(&user)
		return user, profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.HealthProfile{}, err
	}

	if emailAddr != "" {
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		if err == nil {
			if err := s.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
				return domain.User{}, domain.HealthProfile{}, err
			}
			existing.AuthProvider = provider
			existing.AuthSubject = subject
			if displayName != "" && existing.DisplayName == "" {
				existing.DisplayName = displayName
			}
			profile, perr := s.ensureDefaultProfile(ctx, existing.ID, existing.DisplayName)
			if perr != nil {
				return domain.User{}, domain.HealthProfile{}, perr
			}
			s.notifyCurrent(&existing)
			return existing, profile, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.HealthProfile{}, err
		}
	}

	verifiedAt := time.Now().UTC()
	user = domain.User{
		ID:              uuid.NewString(),
		Email:           emailAddr,
		DisplayName:     displayName,
		AuthProvider:    provider,
		AuthSubject:     subject,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, domain.HealthProfile{}, err
	}
	profile, perr := s.ensureDefaultProfile(ctx, user.ID, displayName)
	if perr != nil {
		return domain.User{}, domain.HealthProfile{}, perr
	}
	s.notifyCurrent(&user)
	return user, profile, nil
}

type IdentityInput struct {
	UserID      string
	Email       string
	DisplayName string
	Provider    string
}

// MirrorIdentity refleja la identidad autenticada del caller en la
// tabla de usuarios (crea el registro en el primer sign-in) y asegura
// su perfil de salud por defecto.
func (s *UserService) MirrorIdentity(ctx context.Context, input IdentityInput) (domain.User, domain.HealthProfile, error) {
	if s.users == nil {
		return domain.User{}, domain.HealthProfile{}, errors.New("user service not configured")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return domain.User{}, domain.HealthProfile{}, ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.HealthProfile{}, err
		}
		user = domain.User{
			ID:           userID,
			Email:        normalizeEmail(input.Email),
			DisplayName:  strings.TrimSpace(input.DisplayName),
			AuthProvider: strings.ToLower(strings.TrimSpace(input.Provider)),
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return domain.User{}, domain.HealthProfile{}, err
		}
	}

	profile, err := s.ensureDefaultProfile(ctx, user.ID, user.DisplayName)
	if err != nil {
		return domain.User{}, domain.HealthProfile{}, err
	}
	return user, profile, nil
}

// RequestPasswordReset envía un enlace de recuperación. Para un email
// desconocido no devuelve error: el caller no puede enumerar cuentas.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.resetLimiter != nil && !s.resetLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.resetTokens.Store(token, user.ID, resetTokenTTL); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	link := fmt.Sprintf("%s?token=%s", strings.TrimRight(s.resetBaseURL, "/"), token)
	if err := s.emailSender.SendPasswordReset(ctx, emailAddr, link, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send password reset failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// ResetPassword consume un token de recuperación y fija la contraseña nueva.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	userID, err := s.resetTokens.Consume(token)
	if err != nil {
		return err
	}
	if userID == "" {
		return ErrResetTokenInvalid
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hashBytes))
}

// SignOut limpia el usuario activo para los suscriptores de AuthState.
// La revocación del refresh token la hace el handler via JWTService.
func (s *UserService) SignOut() {
	s.notifyCurrent(nil)
}

func (s *UserService) ensureDefaultProfile(ctx context.Context, userID, fullName string) (domain.HealthProfile, error) {
	if s.profiles == nil {
		return domain.DefaultProfile(userID, fullName), nil
	}
	existing, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.HealthProfile{}, err
	}
	profile := domain.DefaultProfile(userID, fullName)
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return domain.HealthProfile{}, err
	}
	return profile, nil
}

func (s *UserService) notifyCurrent(user *domain.User) {
	if s.authState != nil {
		s.authState.SetCurrent(user)
	}
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
