package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

func TestGenerateAndVerify(t *testing.T) {
	cert, err := GenerateCertificate("fp1", testSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, cert)

	assert.NoError(t, VerifyCertificate(cert, "fp1", testSecret))
}

func TestVerify_WrongFingerprint(t *testing.T) {
	cert, err := GenerateCertificate("fp1", testSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Error(t, VerifyCertificate(cert, "fp2", testSecret))
}

func TestVerify_Expired(t *testing.T) {
	cert, err := GenerateCertificate("fp1", testSecret, time.Now().Add(-time.Second))
	require.NoError(t, err)

	assert.Error(t, VerifyCertificate(cert, "fp1", testSecret))
}

func TestVerify_WrongSecret(t *testing.T) {
	cert, err := GenerateCertificate("fp1", testSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Error(t, VerifyCertificate(cert, "fp1", []byte("other-secret")))
}

func TestVerify_Garbage(t *testing.T) {
	assert.Error(t, VerifyCertificate("not-a-token", "fp1", testSecret))
	assert.Error(t, VerifyCertificate("", "fp1", testSecret))
}

func TestGenerate_ExpClaimMatchesRequestedExpiry(t *testing.T) {
	expiresAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	cert, err := GenerateCertificate("fp1", testSecret, expiresAt)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(cert, claims, func(t *jwt.Token) (interface{}, error) {
		return testSecret, nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)

	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}
