package biz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/saasgenius/saasgenius/internal/conf"
)

// Subscription tiers.
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
	SubscriptionPro     = "pro"
)

// User entity.
type User struct {
	ID               int
	Username         string
	Email            string
	PasswordHash     string
	SubscriptionType string
	CreatedAt        time.Time
	LastLogin        *time.Time
}

// UserRepo is the persistence contract for users.
type UserRepo interface {
	CreateUser(ctx context.Context, u *User) (int, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, id int) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// AnalyticsRepo records usage events. Implementations must never fail the
// calling request.
type AnalyticsRepo interface {
	RecordEvent(ctx context.Context, userID *int, eventType, eventData string)
	CountEvents(ctx context.Context, eventType string) (int, error)
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
	demoEmail    = "demo@saasgenius.app"
)

// UserUseCase holds registration, login and session logic.
type UserUseCase struct {
	repo      UserRepo
	analytics AnalyticsRepo
	log       *log.Helper
	jwtKey    string
}

func NewUserUseCase(repo UserRepo, analytics AnalyticsRepo, auth *conf.Auth, logger log.Logger) *UserUseCase {
	jwtKey := "default-secret"
	if auth != nil && auth.JwtKey != "" {
		jwtKey = auth.JwtKey
	}
	return &UserUseCase{
		repo:      repo,
		analytics: analytics,
		log:       log.NewHelper(logger),
		jwtKey:    jwtKey,
	}
}

// Register validates and creates a new account.
func (uc *UserUseCase) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if len(username) < 3 {
		return nil, errors.BadRequest("INVALID_USERNAME", "Username must be at least 3 characters long")
	}
	if !emailRe.MatchString(email) {
		return nil, errors.BadRequest("INVALID_EMAIL", "Invalid email address")
	}
	if msg := PasswordError(CheckPassword(password)); msg != "" {
		return nil, errors.BadRequest("WEAK_PASSWORD", msg)
	}
	if _, err := uc.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, errors.BadRequest("USERNAME_TAKEN", "Username already exists")
	}
	if _, err := uc.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, errors.BadRequest("EMAIL_TAKEN", "Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:         username,
		Email:            email,
		PasswordHash:     string(hash),
		SubscriptionType: SubscriptionFree,
	}
	id, err := uc.repo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	uc.analytics.RecordEvent(ctx, &id, "user_registered", username)
	uc.log.Infof("registered user %s (id=%d)", username, id)
	return u, nil
}

// Login accepts a username or an email in the identifier field. A wrong
// identifier and a wrong password are indistinguishable to the caller.
func (uc *UserUseCase) Login(ctx context.Context, identifier, password string) (*User, error) {
	identifier = strings.TrimSpace(identifier)

	u, err := uc.repo.GetUserByUsername(ctx, identifier)
	if err != nil && strings.Contains(identifier, "@") {
		u, err = uc.repo.GetUserByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		return nil, errors.Unauthorized("AUTH_FAILED", "Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errors.Unauthorized("AUTH_FAILED", "Invalid credentials")
	}

	if err := uc.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		uc.log.Warnf("update last_login for %s: %v", u.Username, err)
	}
	uc.analytics.RecordEvent(ctx, &u.ID, "user_login", u.Username)
	return u, nil
}

// DemoLogin finds or creates the shared demo account and signs it in.
func (uc *UserUseCase) DemoLogin(ctx context.Context) (*User, error) {
	u, err := uc.repo.GetUserByUsername(ctx, demoUsername)
	if err != nil {
		hash, herr := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if herr != nil {
			return nil, herr
		}
		u = &User{
			Username:         demoUsername,
			Email:            demoEmail,
			PasswordHash:     string(hash),
			SubscriptionType: SubscriptionPremium,
		}
		id, cerr := uc.repo.CreateUser(ctx, u)
		if cerr != nil {
			return nil, cerr
		}
		u.ID = id
		uc.log.Info("created demo account")
	}
	if err := uc.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		uc.log.Warnf("update last_login for demo: %v", err)
	}
	uc.analytics.RecordEvent(ctx, &u.ID, "demo_login", "")
	return u, nil
}

// Logout records the sign-out event. The session itself is stateless, the
// transport clears the cookie.
func (uc *UserUseCase) Logout(ctx context.Context, u *User) {
	uc.analytics.RecordEvent(ctx, &u.ID, "user_logout", u.Username)
}

// Profile returns the account by id.
func (uc *UserUseCase) Profile(ctx context.Context, userID int) (*User, error) {
	return uc.repo.GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before applying the policy
// to the new one.
func (uc *UserUseCase) ChangePassword(ctx context.Context, userID int, current, next string) error {
	u, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return errors.Unauthorized("AUTH_FAILED", "Current password is incorrect")
	}
	if msg := PasswordError(CheckPassword(next)); msg != "" {
		return errors.BadRequest("WEAK_PASSWORD", msg)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	uc.analytics.RecordEvent(ctx, &userID, "password_changed", "")
	return nil
}

// IssueSession signs a JWT session token. Remembered sessions last 30 days,
// default sessions 24 hours.
func (uc *UserUseCase) IssueSession(u *User, remember bool) (string, time.Duration, error) {
	ttl := 24 * time.Hour
	if remember {
		ttl = 30 * 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", u.ID),
		"username": u.Username,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(uc.jwtKey))
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

// ParseSession validates a session token and returns the user id.
func (uc *UserUseCase) ParseSession(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(uc.jwtKey), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.Unauthorized("AUTH_FAILED", "invalid session")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.Unauthorized("AUTH_FAILED", "invalid session")
	}
	sub, _ := claims["sub"].(string)
	var id int
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil || id <= 0 {
		return 0, errors.Unauthorized("AUTH_FAILED", "invalid session")
	}
	return id, nil
}
