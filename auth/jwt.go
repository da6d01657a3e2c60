// Package auth issues and verifies the access and refresh tokens of the API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kelydev/apiTramite/models"
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// Claims are the JWT claims of both token types.
type Claims struct {
	Rol  string `json:"rol"`
	Area int    `json:"area"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

// Actor converts the claims into the workflow actor.
func (c *Claims) Actor() models.Actor {
	return models.Actor{UserID: c.UserID(), AreaID: c.Area, Admin: c.Rol == models.RolAdministrador}
}

// TokenManager signs and parses HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue returns a fresh access/refresh pair for the session.
func (m *TokenManager) Issue(s models.Sesion) (models.TokenPair, error) {
	access, err := m.sign(s, TypeAccess, m.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := m.sign(s, TypeRefresh, m.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		RolName:      s.RolName,
		UserID:       s.UserID,
		AreaID:       s.AreaID,
	}, nil
}

func (m *TokenManager) sign(s models.Sesion, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Rol:  s.RolName,
		Area: s.AreaID,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(s.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("error signing %s token: %w", typ, err)
	}
	return token, nil
}

// Parse validates a token and checks it is of the expected type.
func (m *TokenManager) Parse(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
