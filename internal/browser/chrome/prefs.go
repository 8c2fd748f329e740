package chrome

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
)

// Preferences returns the profile settings written before launch. With the
// credential service off Chrome raises no save-password or breached-password
// dialog after login.
func Preferences() map[string]interface{} {
	return map[string]interface{}{
		"credentials_enable_service":    false,
		"credentials_enable_autosignin": false,
		"profile": map[string]interface{}{
			"password_manager_enabled":        false,
			"password_manager_leak_detection": false,
			"default_content_setting_values": map[string]interface{}{
				"notifications": 2,
				"popups":        1,
			},
		},
		"autofill": map[string]interface{}{
			"profile_enabled":     false,
			"credit_card_enabled": false,
		},
		"safebrowsing": map[string]interface{}{
			"enabled": false,
		},
	}
}

// NewProfile creates a throwaway user data directory under parent (os.TempDir
// when empty) with Preferences applied to its Default profile. The caller
// removes it after the browser exits.
func NewProfile(parent string) (string, error) {
	dir, err := os.MkdirTemp(parent, "saucecheck-profile-")
	if err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := WritePreferences(dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// WritePreferences writes Default/Preferences inside userDataDir.
func WritePreferences(userDataDir string) error {
	defaultDir := filepath.Join(userDataDir, "Default")
	if err := os.MkdirAll(defaultDir, 0o700); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}
	data, err := json.Marshal(Preferences())
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(filepath.Join(defaultDir, "Preferences"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
