// Package config provides environment-driven configuration for the GreenB
// Ops services.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Remote holds connection settings for the hosted realtime database and
// identity provider.
type Remote struct {
	APIKey            string
	ProjectID         string
	DatabaseURL       string
	MessagingSenderID string
	AppID             string
}

// Demo credentials used outside production when env vars are absent.
// These point at a sandbox project and carry no privileged access.
var demoRemote = Remote{
	APIKey:            "demo-api-key",
	ProjectID:         "greenb-sandbox",
	DatabaseURL:       "https://greenb-sandbox-default-rtdb.firebaseio.com",
	MessagingSenderID: "000000000000",
	AppID:             "1:000000000000:web:demo",
}

// RemoteFromEnv builds Remote from GREENB_* environment variables.
// In production (APP_ENV=production) every variable is required and missing
// ones are an error. In any other environment missing values fall back to
// the demo credentials.
func RemoteFromEnv() (Remote, error) {
	r := Remote{
		APIKey:            os.Getenv("GREENB_API_KEY"),
		ProjectID:         os.Getenv("GREENB_PROJECT_ID"),
		DatabaseURL:       os.Getenv("GREENB_DATABASE_URL"),
		MessagingSenderID: os.Getenv("GREENB_MESSAGING_SENDER_ID"),
		AppID:             os.Getenv("GREENB_APP_ID"),
	}

	missing := r.missing()
	if len(missing) == 0 {
		return r, nil
	}

	if os.Getenv("APP_ENV") == "production" {
		return Remote{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if r.APIKey == "" {
		r.APIKey = demoRemote.APIKey
	}
	if r.ProjectID == "" {
		r.ProjectID = demoRemote.ProjectID
	}
	if r.DatabaseURL == "" {
		r.DatabaseURL = demoRemote.DatabaseURL
	}
	if r.MessagingSenderID == "" {
		r.MessagingSenderID = demoRemote.MessagingSenderID
	}
	if r.AppID == "" {
		r.AppID = demoRemote.AppID
	}
	return r, nil
}

// UsedFallback reports whether any field came from the demo credentials.
func (r Remote) UsedFallback() bool {
	return r.APIKey == demoRemote.APIKey ||
		r.ProjectID == demoRemote.ProjectID ||
		r.DatabaseURL == demoRemote.DatabaseURL
}

func (r Remote) missing() []string {
	var missing []string
	if r.APIKey == "" {
		missing = append(missing, "GREENB_API_KEY")
	}
	if r.ProjectID == "" {
		missing = append(missing, "GREENB_PROJECT_ID")
	}
	if r.DatabaseURL == "" {
		missing = append(missing, "GREENB_DATABASE_URL")
	}
	if r.MessagingSenderID == "" {
		missing = append(missing, "GREENB_MESSAGING_SENDER_ID")
	}
	if r.AppID == "" {
		missing = append(missing, "GREENB_APP_ID")
	}
	return missing
}
