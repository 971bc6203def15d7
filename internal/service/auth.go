package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const minPasswordLength = 6

// Sign-in attempts allowed per email: a burst of five, then one every
// twelve seconds.
var (
	signInRate  = rate.Every(12 * time.Second)
	signInBurst = 5
)

// limiterIdle is how long an unused limiter needs to refill completely.
// Past that it is indistinguishable from a new one and can be dropped.
var limiterIdle = time.Duration(signInBurst) * 12 * time.Second

type signInLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// AuthService is the identity provider: it owns credentials, issues session
// tokens and resolves a token back into a Session.
type AuthService struct {
	identities IdentityRepository
	users      UserRepository
	tokens     TokenRepository
	rel        *Relationships
	issuer     *TokenIssuer
	log        *zap.Logger

	now       func() time.Time
	mu        sync.Mutex
	limiters  map[string]*signInLimiter
	lastSweep time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	identities IdentityRepository,
	users UserRepository,
	tokens TokenRepository,
	rel *Relationships,
	issuer *TokenIssuer,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		identities: identities,
		users:      users,
		tokens:     tokens,
		rel:        rel,
		issuer:     issuer,
		log:        log,
		now:        time.Now,
		limiters:   make(map[string]*signInLimiter),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(reg *models.Registration) error {
	reg.Email = normalizeEmail(reg.Email)
	if addr, err := mail.ParseAddress(reg.Email); err != nil || addr.Address != reg.Email {
		return apperr.New(apperr.InvalidEmail, "")
	}
	if len(reg.Password) < minPasswordLength {
		return apperr.New(apperr.WeakPassword, "")
	}
	switch reg.Role {
	case "":
		reg.Role = models.RoleTenant
	case models.RoleAdmin, models.RoleTenant:
	default:
		return apperr.Validationf("unknown role %q", reg.Role)
	}
	return nil
}

// Register creates the identity and the user document sharing its id. When
// the registration names an apartment, that apartment is pointed at the new
// user; a failure there is logged and does not fail the registration. If the
// user document cannot be written the identity is removed again.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := validateRegistration(&reg); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	if err := s.identities.Create(ctx, models.Identity{ID: id, Email: reg.Email, PasswordHash: hash}); err != nil {
		return nil, err
	}

	u := models.User{
		ID:          id,
		Email:       reg.Email,
		Username:    reg.Username,
		FullName:    reg.FullName,
		Phone:       reg.Phone,
		Address:     reg.Address,
		Country:     reg.Country,
		Role:        reg.Role,
		Status:      UserStatusFor("", reg.ApartmentID),
		ApartmentID: reg.ApartmentID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if derr := s.identities.Delete(ctx, id); derr != nil {
			s.log.Error("failed to remove identity after user write failure",
				zap.String("id", id), zap.Error(derr))
		}
		return nil, fmt.Errorf("create user document: %w", err)
	}

	if reg.ApartmentID != nil {
		s.rel.OnUserApartmentChanged(ctx, id, nil, reg.ApartmentID)
	}

	created, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read back user: %w", err)
	}
	s.log.Info("user registered", zap.String("id", id), zap.String("role", string(u.Role)))
	return created, nil
}

// SignUp registers a tenant account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error) {
	reg.Role = models.RoleTenant
	u, err := s.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.issue(*u)
}

// limiter returns the sign-in limiter of email. Limiters idle for longer
// than limiterIdle are swept at most once per limiterIdle.
// EnsureAdmin registers reg as an admin when no admin account exists yet.
// It returns the new user, or nil when an admin was already there.
func (s *AuthService) EnsureAdmin(ctx context.Context, reg models.Registration) (*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			return nil, nil
		}
	}
	reg.Role = models.RoleAdmin
	reg.ApartmentID = nil
	u, err := s.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.log.Info("bootstrap admin created", zap.String("id", u.ID), zap.String("email", u.Email))
	return u, nil
}

func (s *AuthService) limiter(email string) *rate.Limiter {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= limiterIdle {
		for k, l := range s.limiters {
			if now.Sub(l.lastSeen) >= limiterIdle {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}
	l, ok := s.limiters[email]
	if !ok {
		l = &signInLimiter{Limiter: rate.NewLimiter(signInRate, signInBurst)}
		s.limiters[email] = l
	}
	l.lastSeen = now
	return l.Limiter
}

// SignIn verifies the credentials and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, apperr.New(apperr.InvalidCredentials, "")
	}
	if !s.limiter(email).Allow() {
		return nil, apperr.New(apperr.TooManyRequests, "")
	}

	id, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidCredentials, "")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(id.PasswordHash, []byte(creds.Password)) != nil {
		return nil, apperr.New(apperr.InvalidCredentials, "")
	}

	u, err := s.users.Get(ctx, id.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.UserDataNotFound, "")
		}
		return nil, err
	}
	if models.Blocked(u.Status) {
		return nil, apperr.New(apperr.UserDisabled, "")
	}
	return s.issue(*u)
}

func (s *AuthService) issue(u models.User) (*models.SignInResult, error) {
	token, claims, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &models.SignInResult{Token: token, ExpiresAt: claims.ExpiresAt.Unix(), User: u}, nil
}

// SignOut revokes the session's token until it expires.
func (s *AuthService) SignOut(ctx context.Context, sess models.Session) error {
	return s.tokens.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
}

// Authenticate resolves a token into a Session. The profile is read from the
// users collection on every call; a token whose user document is gone fails.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, err)
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperr.New(apperr.Unauthenticated, "Session has been signed out.")
	}

	u, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.UserDataNotFound, "")
		}
		return nil, err
	}
	if models.Blocked(u.Status) {
		return nil, apperr.New(apperr.UserDisabled, "")
	}
	return &models.Session{TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time, User: *u}, nil
}

// RemoveIdentity deletes the credentials of a user. A missing identity is
// not an error.
func (s *AuthService) RemoveIdentity(ctx context.Context, id string) error {
	err := s.identities.Delete(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
