package config

import (
	"errors"
	"os"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	LocalityCode  string
	JWTSigningKey string
}

// ErrMissingSigningKey is returned when a production-backed process starts
// without a real token signing key.
var ErrMissingSigningKey = errors.New("JWT_SIGNING_KEY must be set when DATABASE_URL is set")

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty DatabaseURL selects the in-memory backend, which is intended
// for local development only; in that mode a development signing key is
// substituted when JWT_SIGNING_KEY is unset. With a database configured the
// signing key is required.
func FromEnv() (Server, error) {
	addr := os.Getenv("WARGA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	locality := os.Getenv("WARGA_LOCALITY_CODE")
	if locality == "" {
		locality = "DS-SUKAMAJU"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		if databaseURL != "" {
			return Server{}, ErrMissingSigningKey
		}
		jwtSigningKey = "dev-only-signing-key"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   databaseURL,
		LocalityCode:  locality,
		JWTSigningKey: jwtSigningKey,
	}, nil
}
