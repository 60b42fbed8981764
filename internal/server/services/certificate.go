package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hlf20010508/transfery/internal/common"
	"github.com/hlf20010508/transfery/internal/logging"
	"github.com/hlf20010508/transfery/internal/server/auth"
	sc "github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/models"
	"github.com/hlf20010508/transfery/internal/server/repositories/repomanager"
)

const secretKeyLength = 32

// CertificateService gates private content. It issues device certificates
// against the shared credential pair, verifies them on later requests and
// keeps the remembered-device inventory.
type CertificateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger

	secretKey []byte
}

func NewCertificateService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *CertificateService {
	return &CertificateService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		log:         log,
	}
}

// Init loads the signing secret, generating and persisting one on first
// startup. Certificates issued before a database wipe become invalid, which
// is the intended consequence of wiping.
func (s *CertificateService) Init(ctx context.Context) error {
	repo := s.repomanager.Secrets(s.db)

	secret, err := repo.Get(ctx)
	if err == nil {
		s.secretKey = []byte(secret)
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error loading signing secret: %w", err)
	}

	secret, err = common.MakeRandHexString(secretKeyLength)
	if err != nil {
		return fmt.Errorf("error generating signing secret: %w", err)
	}
	if err := repo.Create(ctx, secret, now().UnixMilli()); err != nil {
		return fmt.Errorf("error storing signing secret: %w", err)
	}

	s.secretKey = []byte(secret)
	s.log.Info(ctx, "generated new signing secret")
	return nil
}

// Issue authenticates the credential pair and mints a certificate for the
// device fingerprint. rememberMe selects the long validity and records the
// device in the inventory. Returns common.ErrorUnauthorized on a credential
// mismatch.
func (s *CertificateService) Issue(ctx context.Context, username, password, fingerprint, browser string, rememberMe bool) (certificate string, expirationTimestamp int64, err error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	if !userOK || !passOK {
		return "", 0, common.ErrorUnauthorized
	}

	validity := s.config.CertShortTTL
	if rememberMe {
		validity = s.config.CertLongTTL
	}

	issuedAt := now()
	expiresAt := issuedAt.Add(validity)

	certificate, err = auth.GenerateCertificate(fingerprint, s.secretKey, expiresAt)
	if err != nil {
		return "", 0, fmt.Errorf("error generating certificate: %w", err)
	}

	nowMs := issuedAt.UnixMilli()
	expirationTimestamp = expiresAt.UnixMilli()

	if rememberMe {
		repo := s.repomanager.Devices(s.db)
		err = repo.Upsert(ctx, &models.Device{
			Fingerprint:         fingerprint,
			Browser:             browser,
			LastUseTimestamp:    nowMs,
			ExpirationTimestamp: expirationTimestamp,
		})
		if err != nil {
			return "", 0, fmt.Errorf("error recording device: %w", err)
		}
	}

	return certificate, expirationTimestamp, nil
}

// Verify reports whether the certificate is valid for the fingerprint. On
// success it refreshes the device's last-use timestamp best effort; a
// failed touch never rejects an otherwise valid certificate.
func (s *CertificateService) Verify(ctx context.Context, certificate, fingerprint string) bool {
	if err := auth.VerifyCertificate(certificate, fingerprint, s.secretKey); err != nil {
		return false
	}

	repo := s.repomanager.Devices(s.db)
	if err := repo.Touch(ctx, fingerprint, now().UnixMilli()); err != nil {
		s.log.Warn(ctx, "failed to touch device", "fingerprint", fingerprint, "error", err)
	}

	return true
}

// Devices lists remembered devices, most recently used first.
func (s *CertificateService) Devices(ctx context.Context) ([]*models.Device, error) {
	repo := s.repomanager.Devices(s.db)

	items, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error querying devices: %w", err)
	}
	return items, nil
}

// SignOutDevice forgets a remembered device. Its certificate stays
// cryptographically valid until expiry; signing out only removes it from
// the inventory.
func (s *CertificateService) SignOutDevice(ctx context.Context, fingerprint string) error {
	repo := s.repomanager.Devices(s.db)

	if err := repo.Remove(ctx, fingerprint); err != nil {
		return fmt.Errorf("error removing device: %w", err)
	}
	return nil
}
