package collection

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// Credentials are the coordinates of the collection server.
	Credentials struct {
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
	}

	// Preferences are the values kept between two runs.
	Preferences struct {
		Credentials    Credentials `json:"credentials"`
		LastCollection string      `json:"last_collection,omitempty"`
	}

	// A PreferenceStore loads and saves the preferences.
	PreferenceStore interface {
		Load() (Preferences, error)
		Save(Preferences) error
	}

	// A Dialer returns a client for the given credentials.
	Dialer func(Credentials) (gmset.Client, error)

	// MemoryPreferences is a PreferenceStore living in memory.
	MemoryPreferences struct {
		mu    sync.Mutex
		prefs Preferences
	}
)

// Configured returns true when both endpoint and access key are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.AccessKey) != ""
}

// Validate checks the credentials.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	return nil
}

// NewMemoryPreferences returns a MemoryPreferences holding prefs.
func NewMemoryPreferences(prefs Preferences) *MemoryPreferences {
	return &MemoryPreferences{prefs: prefs}
}

// Load implements PreferenceStore.
func (m *MemoryPreferences) Load() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

// Save implements PreferenceStore.
func (m *MemoryPreferences) Save(prefs Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	return nil
}

// HTTPDialer returns a Dialer building HTTP clients.
func HTTPDialer(log logrus.FieldLogger) Dialer {
	return func(c Credentials) (gmset.Client, error) {
		return gmset.NewClient(http.DefaultClient, websocket.DefaultDialer, strings.TrimSpace(c.Endpoint), strings.TrimSpace(c.AccessKey), log)
	}
}
