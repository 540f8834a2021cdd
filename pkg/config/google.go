// pkg/config/google.go
package config

import (
	"errors"
	"fmt"
	"os"
)

// GoogleConfig holds the service-account credential for the Sheets API.
// The credential is either the JSON payload itself (GOOGLE_CRED, suitable
// for CI secrets) or a path to a key file (GOOGLE_APPLICATION_CREDENTIALS).
type GoogleConfig struct {
	CredentialsJSON []byte
}

// LoadGoogleConfig loads the Google service-account credential from
// environment variables
func LoadGoogleConfig() (*GoogleConfig, error) {
	if payload := os.Getenv("GOOGLE_CRED"); payload != "" {
		return &GoogleConfig{CredentialsJSON: []byte(payload)}, nil
	}

	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
		}
		return &GoogleConfig{CredentialsJSON: b}, nil
	}

	return nil, errors.New("either GOOGLE_CRED or GOOGLE_APPLICATION_CREDENTIALS environment variable is required")
}
