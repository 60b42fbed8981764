// Package auth implements the stateless device certificate: a signed token
// binding a device fingerprint to an expiry. Certificates are HS256 JWTs
// signed with the server secret; verification needs no server-side session
// state.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hlf20010508/transfery/internal/common"
)

// Claims binds a device fingerprint to the standard expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	Fingerprint string
}

// GenerateCertificate issues a certificate for the given fingerprint,
// valid until expiresAt. The caller supplies the expiry so the value it
// reports to clients and the one enforced here come from the same clock.
func GenerateCertificate(fingerprint string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Fingerprint: fingerprint,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyCertificate checks the certificate signature and expiry and that it
// was issued for the given fingerprint. It fails closed: any parse or
// signature error yields common.ErrInvalidCertificate.
func VerifyCertificate(certificate, fingerprint string, secretKey []byte) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(certificate, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return common.ErrInvalidCertificate
	}

	if !token.Valid || claims.Fingerprint != fingerprint {
		return common.ErrInvalidCertificate
	}

	return nil
}
