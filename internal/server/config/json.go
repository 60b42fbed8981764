package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hlf20010508/transfery/internal/flagx"
	"github.com/hlf20010508/transfery/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	Username         string         `json:"username"`
	Password         string         `json:"password"`
	ItemsPerPage     int            `json:"items_per_page"`
	CertShortTTL     timex.Duration `json:"cert_short_ttl"`
	CertLongTTL      timex.Duration `json:"cert_long_ttl"`
	PresignExpiry    timex.Duration `json:"presign_expiry"`
	UploadSessionTTL timex.Duration `json:"upload_session_ttl"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags. If it
// is not set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.Username = c.Username
	config.Password = c.Password
	config.ItemsPerPage = c.ItemsPerPage
	config.CertShortTTL = time.Duration(c.CertShortTTL.Duration)
	config.CertLongTTL = time.Duration(c.CertLongTTL.Duration)
	config.PresignExpiry = time.Duration(c.PresignExpiry.Duration)
	config.UploadSessionTTL = time.Duration(c.UploadSessionTTL.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
