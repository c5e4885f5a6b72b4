package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"societyhub/internal/domain"
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
	ApartmentID *int64 `json:"apartment_id,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) GenerateToken(actor domain.Actor) (string, error) {
	claims := Claims{
		UserID:      actor.UserID,
		Role:        string(actor.Role),
		ApartmentID: actor.ApartmentID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	if claims.UserID <= 0 || !domain.UserRole(claims.Role).Valid() {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}

// Actor converts verified claims into the descriptor services consume.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{
		UserID:      c.UserID,
		Role:        domain.UserRole(c.Role),
		ApartmentID: c.ApartmentID,
	}
}
