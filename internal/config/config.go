package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

// Settings holds the persisted application configuration.
type Settings struct {
	Shortcut         string `json:"shortcut"`
	Model            string `json:"model"`
	Language         string `json:"language,omitempty"`
	UseNotifications bool   `json:"use_notifications"`

	// APIKey is a marker only: "managed" means the real key lives in the
	// system keyring, never in this file.
	APIKey string `json:"api_key,omitempty"`

	// Non-JSON fields (runtime state)
	path string
}

const (
	// DefaultShortcut is the binding requested when no saved configuration
	// exists yet.
	DefaultShortcut = "Ctrl+Shift+R"

	// DefaultModel is the transcription model sent with each request.
	DefaultModel = "whisper-1"

	keyringService = "WhisDesktop"
	apiKeyName     = "openai_api_key"
	managedMarker  = "managed"
)

// DefaultPath returns the settings file location, ~/.config/whis/settings.json.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(configDir, "whis", "settings.json"), nil
}

// Path returns the file this Settings was loaded from.
func (s *Settings) Path() string {
	return s.path
}

// Load reads the settings file at path, creating it with defaults when it
// does not exist yet.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Settings file '%s' not found, creating defaults.", path)
			if createErr := createDefault(path); createErr != nil {
				return nil, fmt.Errorf("settings file not found and failed to create default '%s': %w", path, createErr)
			}
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read settings file '%s' after creating default: %w", path, err)
			}
		} else {
			return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
		}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", path, err)
	}
	settings.path = path

	if settings.Shortcut == "" {
		settings.Shortcut = DefaultShortcut
	}
	if settings.Model == "" {
		settings.Model = DefaultModel
	}

	return &settings, nil
}

// Save writes the settings back to their file.
func (s *Settings) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

func createDefault(path string) error {
	defaults := &Settings{
		Shortcut:         DefaultShortcut,
		Model:            DefaultModel,
		UseNotifications: true,
		path:             path,
	}
	return defaults.Save()
}

func openKeyring() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		},
		LibSecretCollectionName:  "login",
		WinCredPrefix:            keyringService,
		KeychainTrustApplication: true,
	})
}

// SetAPIKey stores the transcription API key in the system keyring and marks
// the settings file accordingly.
func (s *Settings) SetAPIKey(value string) error {
	kr, err := openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring for service '%s': %w", keyringService, err)
	}

	err = kr.Set(keyring.Item{
		Key:         apiKeyName,
		Data:        []byte(value),
		Label:       "OpenAI API key for Whis",
		Description: "Managed by WhisDesktop",
	})
	if err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}

	s.APIKey = managedMarker
	return s.Save()
}

// ResolveAPIKey returns the transcription API key: the keyring-managed value
// when one has been stored, otherwise the OPENAI_API_KEY environment
// variable. An empty string means no key is configured.
func (s *Settings) ResolveAPIKey() string {
	if s.APIKey == managedMarker {
		kr, err := openKeyring()
		if err != nil {
			log.Printf("Warning: failed to open keyring: %v. Falling back to environment.", err)
		} else {
			item, err := kr.Get(apiKeyName)
			if err == nil {
				return string(item.Data)
			}
			if err == keyring.ErrKeyNotFound {
				log.Printf("Warning: API key marked managed but not found in keyring.")
			} else {
				log.Printf("Error retrieving API key from keyring: %v", err)
			}
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
