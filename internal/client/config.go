package client

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/chzyer/readline"
	"github.com/mdouchement/grandmaster/internal/collection"
	sargon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltKeyLength = 16

	// PreferencesFile is the default preferences file, relative to the current directory.
	PreferencesFile = ".grandmaster"
)

// A Passphrase returns the passphrase used to seal the preferences file.
type Passphrase func() ([]byte, error)

// FilePreferences is a collection.PreferenceStore sealed in a file with a passphrase.
// The passphrase is asked at most once.
type FilePreferences struct {
	filename   string
	ask        Passphrase
	mu         sync.Mutex
	passphrase []byte
}

// NewFilePreferences returns a FilePreferences for the given file.
// A nil ask prompts the passphrase on the terminal.
func NewFilePreferences(filename string, ask Passphrase) *FilePreferences {
	if ask == nil {
		ask = func() ([]byte, error) {
			return readline.Password("passphrase: ")
		}
	}

	return &FilePreferences{
		filename: filename,
		ask:      ask,
	}
}

// Exists returns true when the preferences file is present.
func (f *FilePreferences) Exists() bool {
	_, err := os.Stat(f.filename)
	return err == nil
}

// Remove removes the preferences file.
func (f *FilePreferences) Remove() error {
	err := os.Remove(f.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load implements collection.PreferenceStore. A missing file gives empty preferences.
func (f *FilePreferences) Load() (collection.Preferences, error) {
	var prefs collection.Preferences

	ciphertext, err := os.ReadFile(f.filename)
	if os.IsNotExist(err) {
		return prefs, nil
	}
	if err != nil {
		return prefs, errors.Wrap(err, "could not read preferences file")
	}

	passphrase, err := f.secret()
	if err != nil {
		return prefs, err
	}

	payload, err := open(passphrase, ciphertext)
	if err != nil {
		return prefs, err
	}

	err = json.Unmarshal(payload, &prefs)
	return prefs, errors.Wrap(err, "could not parse preferences")
}

// Save implements collection.PreferenceStore. Saving empty preferences removes the file.
func (f *FilePreferences) Save(prefs collection.Preferences) error {
	if prefs == (collection.Preferences{}) {
		return errors.Wrap(f.Remove(), "could not remove preferences file")
	}

	payload, err := json.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "could not serialize preferences")
	}

	passphrase, err := f.secret()
	if err != nil {
		return err
	}

	ciphertext, err := seal(passphrase, payload)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(f.filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", f.filename)
	}
	defer file.Close()

	if _, err = file.Write(ciphertext); err != nil {
		return errors.Wrap(err, "could not store preferences")
	}

	return errors.Wrap(file.Sync(), "could not store preferences")
}

func (f *FilePreferences) secret() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.passphrase != nil {
		return f.passphrase, nil
	}

	passphrase, err := f.ask()
	if err != nil {
		return nil, errors.Wrap(err, "could not read passphrase")
	}
	f.passphrase = passphrase
	return passphrase, nil
}

// seal encrypts the payload with a key derived from the passphrase.
// Layout: salt | nonce | ciphertext.
func seal(passphrase, payload []byte) ([]byte, error) {
	//
	// Key derivation of passphrase

	salt, err := sargon2.GenerateRandomBytes(saltKeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate salt for preferences")
	}
	hash := argon2.IDKey(passphrase, salt, 3, 64<<10, 2, 32)

	//
	// Seal preferences

	aead, err := chacha20poly1305.NewX(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}
	nonce, err := sargon2.GenerateRandomBytes(uint32(aead.NonceSize()))
	if err != nil {
		return nil, errors.Wrap(err, "could not generate nonce for preferences")
	}

	ciphertext := aead.Seal(nil, nonce, payload, nil)
	ciphertext = append(nonce, ciphertext...)
	return append(salt, ciphertext...), nil
}

func open(passphrase, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < saltKeyLength+chacha20poly1305.NonceSizeX {
		return nil, errors.New("preferences file is truncated")
	}

	salt := ciphertext[:saltKeyLength]
	ciphertext = ciphertext[saltKeyLength:]
	hash := argon2.IDKey(passphrase, salt, 3, 64<<10, 2, 32)

	aead, err := chacha20poly1305.NewX(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}

	nonce := ciphertext[:aead.NonceSize()]
	ciphertext = ciphertext[aead.NonceSize():]

	payload, err := aead.Open(nil, nonce, ciphertext, nil)
	return payload, errors.Wrap(err, "could not decrypt preferences file")
}
