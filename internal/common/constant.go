package common

// AuthorizationHeaderName is the HTTP header that carries the client
// fingerprint and certificate as a JSON document.
const AuthorizationHeaderName = "Authorization"
