package models

// Device is a remembered authenticated client, keyed by the
// client-generated fingerprint. ExpirationTimestamp mirrors the expiry of
// the certificate issued to the device; it is advisory only. Expiry is
// enforced by certificate verification, not by row lifecycle.
type Device struct {
	Fingerprint         string `json:"fingerprint"`
	Browser             string `json:"browser"`
	LastUseTimestamp    int64  `json:"lastUseTimestamp"`
	ExpirationTimestamp int64  `json:"expirationTimestamp"`
}
