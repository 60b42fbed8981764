package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	body := `{
		"endpoint_addr": ":9999",
		"database_dsn": "postgres://u:p@h:5432/db",
		"username": "alice",
		"password": "wonder",
		"items_per_page": 30,
		"cert_short_ttl": "10m",
		"cert_long_ttl": "8760h",
		"presign_expiry": "5m",
		"upload_session_ttl": "48h",
		"s3_root_user": "minio",
		"s3_root_password": "miniopass",
		"s3_bucket": "files",
		"s3_region": "eu-central-1",
		"s3_base_endpoint": "http://minio:9000/"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	parseJson(config)

	assert.Equal(t, ":9999", config.EndpointAddr)
	assert.Equal(t, "postgres://u:p@h:5432/db", config.DatabaseDSN)
	assert.Equal(t, "alice", config.Username)
	assert.Equal(t, "wonder", config.Password)
	assert.Equal(t, 30, config.ItemsPerPage)
	assert.Equal(t, 10*time.Minute, config.CertShortTTL)
	assert.Equal(t, 8760*time.Hour, config.CertLongTTL)
	assert.Equal(t, 5*time.Minute, config.PresignExpiry)
	assert.Equal(t, 48*time.Hour, config.UploadSessionTTL)
	assert.Equal(t, "minio", config.S3RootUser)
	assert.Equal(t, "files", config.S3Bucket)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, ":8080", config.EndpointAddr)
}
