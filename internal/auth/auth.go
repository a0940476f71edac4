package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/smritirangarajan/spenderella/internal/report"
	"github.com/smritirangarajan/spenderella/internal/user"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

//go:generate mockgen -source=auth.go -destination=repository_mock.go -package=auth
type Repository interface {
	// CreateUser stores the user and its report setting atomically.
	CreateUser(ctx context.Context, u *user.User, setting *report.Setting) error
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetReportSetting(ctx context.Context, userID uuid.UUID) (*report.Setting, error)
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 access token for userID.
func (t *Tokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, expiresAt, nil
}

func (t *Tokens) Parse(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return id, nil
}

type Service struct {
	repo   Repository
	tokens *Tokens
	cost   int
	now    func() time.Time
}

func NewService(repo Repository, tokens *Tokens, bcryptCost int) *Service {
	return &Service{repo: repo, tokens: tokens, cost: bcryptCost, now: time.Now}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// Register creates the account together with its default monthly report schedule.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*user.User, error) {
	email := user.NormalizeEmail(p.Email)

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &user.User{
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, u, report.DefaultSetting(uuid.Nil, s.now())); err != nil {
		return nil, err
	}

	return u, nil
}

type LoginResult struct {
	User          *user.User      `json:"user"`
	AccessToken   string          `json:"accessToken"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	ReportSetting *report.Setting `json:"reportSetting"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.repo.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	setting, err := s.repo.GetReportSetting(ctx, u.ID)
	if err != nil && !errors.Is(err, report.ErrSettingNotFound) {
		return nil, err
	}

	return &LoginResult{User: u, AccessToken: token, ExpiresAt: expiresAt, ReportSetting: setting}, nil
}

type ctxKey struct{}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user stored by the bearer middleware.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}
