package instance

import "os"

// GetID returns the serving instance identifier, preferring the Cloud Run
// revision, then the Heroku dyno, then the host name.
func GetID() string {
	for _, key := range []string{"K_REVISION", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
