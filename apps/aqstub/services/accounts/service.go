// Package accounts is the in-memory user directory behind the stub API:
// registration, sign-in, email confirmation, password flows and profiles.
// Refresh tokens live in a kv.Store and rotate on every use.
package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quatton/aquakeys/apps/aqstub/services/tokens"
	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqlog"
	"github.com/quatton/aquakeys/pkg/kv"
	"github.com/quatton/aquakeys/pkg/validation"
)

const kvPrefixRefresh = "refresh:"

// Failure is a business rejection. It becomes an envelope with
// succeeded=false and the given HTTP status.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string { return f.Message }

func fail(status int, msg string) error {
	return &Failure{Status: status, Message: msg}
}

var (
	ErrInvalidCredentials  = fail(http.StatusBadRequest, "Invalid email or password")
	ErrEmailNotConfirmed   = fail(http.StatusBadRequest, "Email is not confirmed")
	ErrEmailTaken          = fail(http.StatusBadRequest, "Email is already registered")
	ErrInvalidRefreshToken = fail(http.StatusBadRequest, "Invalid refresh token")
	ErrInvalidConfirmation = fail(http.StatusBadRequest, "Invalid confirmation link")
	ErrInvalidResetToken   = fail(http.StatusBadRequest, "Invalid or expired reset token")
	ErrWrongPassword       = fail(http.StatusBadRequest, "Current password is incorrect")
	ErrUserNotFound        = fail(http.StatusNotFound, "User not found")
)

type account struct {
	id           string
	email        string
	password     string
	firstName    string
	lastName     string
	phone        string
	address      api.Address
	role         api.Role
	confirmed    bool
	confirmToken string
	resetToken   string
}

func (a *account) user() *api.User {
	return &api.User{
		ID:          a.id,
		Email:       a.email,
		FirstName:   a.firstName,
		LastName:    a.lastName,
		PhoneNumber: a.phone,
	}
}

func (a *account) profile() *api.Profile {
	return &api.Profile{
		ID:          a.id,
		Email:       a.email,
		PhoneNumber: a.phone,
		FirstName:   a.firstName,
		LastName:    a.lastName,
		Country:     a.address.Country,
		City:        a.address.City,
		Street:      a.address.Street,
		State:       a.address.State,
		ZipCode:     a.address.ZipCode,
		Roles:       []string{a.role.String()},
	}
}

type Options struct {
	ClientID              string
	RefreshTTL            time.Duration
	RequireConfirmedEmail bool
	Now                   func() time.Time
	Logger                *slog.Logger
}

type Service struct {
	tokens *tokens.Issuer
	kv     kv.Store
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	byEmail map[string]*account
	byID    map[string]*account
}

func NewService(issuer *tokens.Issuer, store kv.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		tokens:  issuer,
		kv:      store,
		opts:    opts,
		logger:  aqlog.OrDiscard(opts.Logger),
		byEmail: map[string]*account{},
		byID:    map[string]*account{},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// invalid turns a validation error into a Failure carrying its field messages.
func invalid(err error) error {
	if ve, ok := validation.AsError(err); ok {
		return fail(http.StatusBadRequest, "Validation failed: "+ve.Error())
	}
	return fail(http.StatusBadRequest, err.Error())
}

func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	if err := validation.Validate(req); err != nil {
		return nil, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(req.Email)
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}

	a := &account{
		id:           uuid.NewString(),
		email:        email,
		password:     req.Password,
		firstName:    req.FirstName,
		lastName:     req.LastName,
		phone:        req.PhoneNumber,
		address:      req.Address,
		role:         req.Role,
		confirmToken: uuid.NewString(),
	}
	s.byEmail[email] = a
	s.byID[a.id] = a

	s.logger.Info("registered", "user", a.id, "email", email, "confirmToken", a.confirmToken)
	return a.user(), nil
}

func (s *Service) SignIn(ctx context.Context, req api.SignInRequest) (*api.TokenGrant, error) {
	s.mu.Lock()
	a, ok := s.byEmail[normalizeEmail(req.Email)]
	s.mu.Unlock()

	if !ok || a.password != req.Password {
		return nil, ErrInvalidCredentials
	}
	if s.opts.RequireConfirmedEmail && !a.confirmed {
		return nil, ErrEmailNotConfirmed
	}
	return s.grant(ctx, a)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// invalidated whether or not the exchange succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*api.TokenGrant, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := kvPrefixRefresh + hashToken(refreshToken)
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	// token rotation
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete old refresh token", "error", err)
	}

	userID, expires, err := decodeRefreshEntry(data)
	if err != nil || !s.opts.Now().Before(expires) {
		return nil, ErrInvalidRefreshToken
	}
	a, ok := s.byID[userID]
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	return s.grant(ctx, a)
}

func (s *Service) grant(ctx context.Context, a *account) (*api.TokenGrant, error) {
	access, err := s.tokens.Issue(a.id, a.email, strings.TrimSpace(a.firstName+" "+a.lastName))
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := s.createRefreshToken(ctx, a.id)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	return &api.TokenGrant{AccessToken: access, RefreshToken: refresh, User: a.user()}, nil
}

func (s *Service) createRefreshToken(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	expires := s.opts.Now().Add(s.opts.RefreshTTL)
	entry := userID + "|" + strconv.FormatInt(expires.Unix(), 10)
	return raw, s.kv.Set(ctx, kvPrefixRefresh+hashToken(raw), []byte(entry))
}

func decodeRefreshEntry(data []byte) (string, time.Time, error) {
	userID, exp, ok := strings.Cut(string(data), "|")
	if !ok {
		return "", time.Time{}, fmt.Errorf("malformed refresh entry")
	}
	sec, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", time.Time{}, err
	}
	return userID, time.Unix(sec, 0), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) ConfirmEmail(ctx context.Context, req api.ConfirmEmailRequest) error {
	if err := validation.Validate(req); err != nil {
		return invalid(err)
	}
	if req.ClientID != s.opts.ClientID {
		return ErrInvalidConfirmation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[req.UserID]
	if !ok || a.confirmToken == "" || a.confirmToken != req.Token {
		return ErrInvalidConfirmation
	}
	a.confirmed = true
	a.confirmToken = ""
	return nil
}

// ResendConfirmation issues a new confirmation token. Unknown or already
// confirmed addresses succeed silently so the endpoint does not reveal
// which emails are registered.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byEmail[normalizeEmail(email)]
	if !ok || a.confirmed {
		return nil
	}
	a.confirmToken = uuid.NewString()
	s.logger.Info("confirmation resent", "user", a.id, "confirmToken", a.confirmToken)
	return nil
}

// ForgotPassword issues a reset token. Like ResendConfirmation it never
// reports unknown addresses.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil
	}
	a.resetToken = uuid.NewString()
	s.logger.Info("password reset requested", "user", a.id, "resetToken", a.resetToken)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error {
	if err := validation.Validate(req); err != nil {
		return invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byEmail[normalizeEmail(req.Email)]
	if !ok || a.resetToken == "" || a.resetToken != req.Token {
		return ErrInvalidResetToken
	}
	a.password = req.NewPassword
	a.resetToken = ""
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, req api.ChangePasswordRequest) error {
	if err := validation.Validate(req); err != nil {
		return invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	if a.password != req.CurrentPassword {
		return ErrWrongPassword
	}
	a.password = req.NewPassword
	return nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*api.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return a.profile(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req api.UpdateProfileRequest) (*api.Profile, error) {
	if err := validation.Validate(req); err != nil {
		return nil, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	a.firstName = req.FirstName
	a.lastName = req.LastName
	a.address = api.Address{
		Country: req.Country,
		City:    req.City,
		Street:  req.Street,
		State:   req.State,
		ZipCode: req.ZipCode,
	}
	return a.profile(), nil
}

// PublicProfile is the view of another user: no email or phone number.
func (s *Service) PublicProfile(ctx context.Context, userID string) (*api.Profile, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Email = ""
	p.PhoneNumber = ""
	return p, nil
}

// Authenticate verifies a bearer access token and returns the user id.
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// PendingTokens returns the outstanding confirmation and reset tokens for
// email. A real deployment mails these; the stub logs them and exposes them
// for tests.
func (s *Service) PendingTokens(email string) (userID, confirm, reset string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, found := s.byEmail[normalizeEmail(email)]
	if !found {
		return "", "", "", false
	}
	return a.id, a.confirmToken, a.resetToken, true
}
