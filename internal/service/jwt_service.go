package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const apiTokenType = "api"

// JWTService emite y valida los tokens que protegen la API cuando API_JWT_SECRET esta configurado.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// APIToken es lo que devuelve el CLI al emitir un token.
type APIToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Claims struct {
	Client    string `json:"client"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "soul-agent",
	}
}

// Enabled indica si hay secreto; sin secreto la API queda abierta.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue firma un token para un cliente (p.ej. "frontend", "coach-cli").
func (s *JWTService) Issue(client string) (APIToken, error) {
	if !s.Enabled() {
		return APIToken{}, ErrJWTInvalid
	}
	client = strings.TrimSpace(client)
	if client == "" {
		return APIToken{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		Client:    client,
		TokenType: apiTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   client,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return APIToken{}, err
	}
	return APIToken{Token: signed, ExpiresAt: exp}, nil
}

func (s *JWTService) Parse(tokenString string) (Claims, error) {
	if !s.Enabled() {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if claims.TokenType != apiTokenType {
		return false
	}
	if strings.TrimSpace(claims.Client) == "" || claims.Subject != claims.Client {
		return false
	}
	if strings.TrimSpace(claims.ID) == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
