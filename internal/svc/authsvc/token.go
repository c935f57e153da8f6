package authsvc

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is lifetime of access token and its session.
	DefaultTokenTTL = 7 * 24 * time.Hour

	// DefaultVerificationTTL is lifetime of e-mail verification link.
	DefaultVerificationTTL = 24 * time.Hour

	purposeVerifyEmail = "verify-email"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// AccessClaims is the payload of access token. ID (jti) is the session token.
type AccessClaims struct {
	UserID int64  `json:"userId,string"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type verificationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 token using the secret given at construction.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs access token for the account, sessionToken becomes the jti claim.
func (t *TokenIssuer) Issue(accountID int64, email, role, sessionToken string) (token string, expiresAt time.Time, err error) {
	now := t.now().UTC()
	expiresAt = now.Add(t.ttl)

	claims := AccessClaims{
		UserID: accountID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        sessionToken,
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		err = fmt.Errorf("sign access token: %w", err)
		return
	}

	return
}

// Parse verifies signature, algorithm and expiry of access token.
func (t *TokenIssuer) Parse(token string) (claims AccessClaims, err error) {
	_, err = jwt.ParseWithClaims(token, &claims, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidToken, err)
		return
	}

	if claims.UserID <= 0 || claims.ID == "" {
		err = fmt.Errorf("%w: missing account or session", ErrInvalidToken)
		return
	}

	return
}

// IssueVerification signs e-mail verification token for the account.
func (t *TokenIssuer) IssueVerification(accountID int64) (string, error) {
	now := t.now().UTC()
	claims := verificationClaims{
		Purpose: purposeVerifyEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(DefaultVerificationTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}

	return token, nil
}

// ParseVerification returns account id of a valid e-mail verification token.
// Access token is rejected because it has no purpose claim.
func (t *TokenIssuer) ParseVerification(token string) (accountID int64, err error) {
	claims := verificationClaims{}
	_, err = jwt.ParseWithClaims(token, &claims, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidToken, err)
		return
	}

	if claims.Purpose != purposeVerifyEmail {
		err = fmt.Errorf("%w: wrong purpose", ErrInvalidToken)
		return
	}

	accountID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		err = fmt.Errorf("%w: bad subject", ErrInvalidToken)
		return
	}

	return
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	return t.secret, nil
}
