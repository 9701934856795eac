package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// SessionExpiration defines the lifetime of a session token.
	SessionExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "linkhub-server"
)

// GenerateToken creates and signs a new JWT Token string based on the provided Payload struct.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates the JWT Token string using the provided secretKey.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// Issuer signs session tokens with a fixed secret and lifetime.
type Issuer struct {
	Secret string
	TTL    time.Duration
}

// NewIssuer returns an Issuer. A zero ttl means SessionExpiration.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = SessionExpiration
	}
	return &Issuer{Secret: secret, TTL: ttl}
}

// Issue signs a token for the user and returns it with its expiry.
func (i *Issuer) Issue(userID, username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(i.TTL)

	token, err := GenerateToken(&Payload{ID: userID, Username: username}, i.Secret, i.TTL)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Parse validates a token signed by this issuer.
func (i *Issuer) Parse(token string) (*Payload, error) {
	return ParseToken(token, i.Secret)
}
