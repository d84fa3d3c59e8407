package users

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/granduer/granduer-backend/pkg/config"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

// issueVerificationToken mints a short-lived JWT whose subject is the user
// id. The token travels in the verification link.
func issueVerificationToken(cfg config.JWTConfig, userID uuid.UUID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.VerificationTokenTTL())),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing verification token")
	}
	return signed, nil
}

// parseVerificationToken validates the token and returns the user id.
func parseVerificationToken(cfg config.JWTConfig, raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token is invalid or expired")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token is invalid or expired")
	}
	return userID, nil
}
