package ocr

import (
	"os"

	"google.golang.org/api/option"
)

// credentialOptions returns client options for the credentials configured in
// the environment. Inline JSON wins over a credentials file. With neither
// set, the Google client libraries fall back to Application Default
// Credentials.
func credentialOptions() ([]option.ClientOption, bool) {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}, true
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}, true
	}
	return nil, false
}
