package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gabbymorgan/drivefair.api/config"
)

// Actor roles carried in session tokens
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleDriver   = "driver"
)

// token purposes; a session token cannot confirm an email and vice versa
const (
	purposeSession = "session"
	purposeEmail   = "email_confirmation"
)

type authClaims struct {
	ActorID uint   `json:"actor_id"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AuthService issues and validates signed tokens bound to an actor id and role
type AuthService struct {
	secret []byte
	expiry time.Duration
}

var authServiceInstance *AuthService

// InitAuthService initializes the auth service from configuration
func InitAuthService() *AuthService {
	cfg := config.GetConfig()
	authServiceInstance = &AuthService{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
	}
	return authServiceInstance
}

// GetAuthService returns the initialized auth service instance
func GetAuthService() *AuthService {
	return authServiceInstance
}

// SetAuthService sets the auth service instance (primarily for testing)
func SetAuthService(s *AuthService) {
	authServiceInstance = s
}

func (s *AuthService) sign(actorID uint, role, purpose string, expiry time.Duration) (string, error) {
	claims := authClaims{
		ActorID: actorID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) verify(token, purpose string) (uint, string, error) {
	claims := &authClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return 0, "", ErrUnauthorized("Invalid or expired token.")
	}
	if claims.Purpose != purpose {
		return 0, "", ErrUnauthorized("Invalid or expired token.")
	}
	return claims.ActorID, claims.Role, nil
}

// IssueSessionToken signs a session token for the actor
func (s *AuthService) IssueSessionToken(actorID uint, role string) (string, error) {
	return s.sign(actorID, role, purposeSession, s.expiry)
}

// VerifySessionToken validates a session token and returns the actor id and role
func (s *AuthService) VerifySessionToken(token string) (uint, string, error) {
	return s.verify(token, purposeSession)
}

// IssueEmailToken signs an email-confirmation token for the actor. Email
// tokens are long-lived and are not invalidated on use.
func (s *AuthService) IssueEmailToken(actorID uint, role string) (string, error) {
	return s.sign(actorID, role, purposeEmail, 30*24*time.Hour)
}

// VerifyEmailToken validates an email-confirmation token
func (s *AuthService) VerifyEmailToken(token string) (uint, string, error) {
	return s.verify(token, purposeEmail)
}
