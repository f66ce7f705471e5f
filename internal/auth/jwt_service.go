package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionTokenExpiry is how long a session token stays valid after issuance.
const SessionTokenExpiry = 2 * time.Hour

var (
	// ErrInvalidToken is returned for bad signatures, malformed or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidClaims is returned when the payload to sign has no email.
	ErrInvalidClaims = errors.New("claim payload requires an email")
)

// ClaimPayload is the identity a client asks to have signed.
type ClaimPayload struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Claims represents JWT claims.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, opts ...Option) *JWTService {
	s := &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs payload into a session token valid for SessionTokenExpiry.
func (s *JWTService) Issue(payload ClaimPayload) (string, error) {
	if payload.Email == "" {
		return "", ErrInvalidClaims
	}

	issuedAt := s.now()
	claims := &Claims{
		Email: payload.Email,
		Name:  payload.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(SessionTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims. Time-based checks use
// the service clock rather than jwt's package-level TimeFunc.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, fmt.Errorf("%w: token not valid yet", ErrInvalidToken)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	return claims, nil
}
