package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidKey   = errors.New("invalid key format")
	ErrBadSignature = errors.New("invalid signature")
	ErrWrongScope   = errors.New("key is not valid for this restaurant")
)

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager holds the secrets behind admin tokens and API keys
type Manager struct {
	jwtSecret    []byte
	masterSecret []byte
	tokenTTL     time.Duration
}

func NewManager(jwtSecret, masterSecret string, tokenTTL time.Duration) *Manager {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Manager{jwtSecret: []byte(jwtSecret), masterSecret: []byte(masterSecret), tokenTTL: tokenTTL}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for an admin
func (m *Manager) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(m.jwtSecret)
}

// VerifyToken verifies a JWT token
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, errors.New("unexpected signing method")
		}
		return m.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (m *Manager) sign(payload string) string {
	h := hmac.New(sha256.New, m.masterSecret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateKey creates an API key of the form name.restaurant.signature
func (m *Manager) GenerateKey(name, restaurant string) string {
	payload := name + "." + restaurant
	return payload + "." + m.sign(payload)
}

// KeyInfo is what a verified key carries
type KeyInfo struct {
	Name         string
	RestaurantID string
}

// Allows reports whether the key may act on restaurant
func (k KeyInfo) Allows(restaurant string) bool {
	return k.RestaurantID == "*" || k.RestaurantID == restaurant
}

// VerifyKey validates an HMAC-signed API key
func (m *Manager) VerifyKey(key string) (*KeyInfo, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidKey
	}

	expected := m.sign(parts[0] + "." + parts[1])

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, ErrBadSignature
	}

	return &KeyInfo{Name: parts[0], RestaurantID: parts[1]}, nil
}

// UserStore is the slice of the store admin bootstrap needs
type UserStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, username, passwordHash string) error
}

// EnsureAdminExists creates the first admin when none exists
func EnsureAdminExists(ctx context.Context, users UserStore, username, password string) error {
	count, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if username == "" {
		username = "admin"
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to create the first admin")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := users.CreateUser(ctx, username, hash); err != nil {
		return err
	}
	log.Printf("Default admin user created: %s", username)
	return nil
}
