package setting

import (
	"errors"
	"strings"
)

// KeyWiFiPassword is the facility-access secret distributed to active
// members and rotated by admins.
const KeyWiFiPassword = "WIFI_PASSWORD"

// Domain errors
var (
	ErrEmptyKey   = errors.New("setting key cannot be empty")
	ErrEmptyValue = errors.New("setting value cannot be empty")
)

// Setting is a singleton-per-key string mapping.
type Setting struct {
	Key   string
	Value string
}

// Validate checks if the Setting has valid data.
func (s *Setting) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return ErrEmptyKey
	}
	if strings.TrimSpace(s.Value) == "" {
		return ErrEmptyValue
	}
	return nil
}
