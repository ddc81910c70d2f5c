package auth

import (
	"context"
	"fmt"
	"time"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// Config is the process-wide credential configuration, built once at startup.
type Config struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// UserFinder resolves a token subject to the currently stored user.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Claims is the token payload. Role and names are informational only;
// Verify always re-reads the user.
type Claims struct {
	UserID    int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

type TokenService struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	ttl    time.Duration
	users  UserFinder
	now    func() time.Time
}

func NewTokenService(cfg Config, users UserFinder) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.ErrMissingJWTSecret
	}
	if users == nil {
		return nil, fmt.Errorf("%w: user finder is nil", errors.ErrConfigInvalid)
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported jwt algorithm %q", errors.ErrConfigInvalid, alg)
	}

	return &TokenService{
		method: method,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		users:  users,
		now:    time.Now,
	}, nil
}

// Issue signs a token for user. Without a configured TTL the token carries
// no expiry and stays valid as long as the signature does.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify checks the signature of raw and returns the stored user it names.
func (s *TokenService) Verify(ctx context.Context, raw string) (*models.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidClaims),
			errors.Is(err, jwt.ErrTokenNotValidYet),
			errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, errors.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	if claims.UserID <= 0 {
		return nil, errors.ErrAuthentication
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	return user, nil
}
