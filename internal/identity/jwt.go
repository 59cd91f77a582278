package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "leadflow/pkg/domain-errors"
)

// Verifier validates a bearer credential and yields the identity it asserts.
// All failure modes collapse to a single unauthorized error so callers cannot
// tell a missing credential from a forged one.
type Verifier interface {
	Verify(credential string) (Identity, error)
}

// Claims represents the JWT claims for our access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation. It is a pure function of
// the credential plus the process-wide signing secret.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken signs a token for the given identity. Returns the
// signed token and its JTI so logout can revoke it later.
func (s *JWTService) GenerateAccessToken(id Identity, expiresIn time.Duration) (string, string, error) {
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: id.ID,
		Role:   string(id.Role),
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signedToken, jti, nil
}

var errUnauthenticated = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired credential")

// Verify implements Verifier. Missing, malformed, expired, and badly signed
// credentials all return the same error.
func (s *JWTService) Verify(credential string) (Identity, error) {
	claims, err := s.parse(credential)
	if err != nil {
		return Identity{}, errUnauthenticated
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, errUnauthenticated
	}
	if claims.UserID == "" {
		return Identity{}, errUnauthenticated
	}
	return Identity{ID: claims.UserID, Role: role, Name: claims.Name}, nil
}

// ParseClaims validates the credential and returns its claims, for callers
// that need the JTI (logout) on top of the identity.
func (s *JWTService) ParseClaims(credential string) (*Claims, error) {
	claims, err := s.parse(credential)
	if err != nil {
		return nil, errUnauthenticated
	}
	return claims, nil
}

func (s *JWTService) parse(credential string) (*Claims, error) {
	if credential == "" {
		return nil, errUnauthenticated
	}
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
