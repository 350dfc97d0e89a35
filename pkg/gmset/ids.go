package gmset

import (
	"github.com/gofrs/uuid"
	sargon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
)

const (
	// CollectionCodeLength is the length of generated collection codes.
	CollectionCodeLength = 6

	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// An IDGenerator generates the identifiers assigned on the client side.
type IDGenerator interface {
	// CollectionID returns a short code, meant to be shared in links.
	CollectionID() (string, error)
	// ItemID returns a unique item identifier.
	ItemID() string
}

// RandomIDs is the default IDGenerator.
// Collection codes are 6 base36 characters (~2 billion values), enough for human shared links
// but not a uniqueness guarantee.
type RandomIDs struct{}

// CollectionID implements IDGenerator.
func (RandomIDs) CollectionID() (string, error) {
	b, err := sargon2.GenerateRandomBytes(CollectionCodeLength)
	if err != nil {
		return "", errors.Wrap(err, "could not generate collection code")
	}

	code := make([]byte, len(b))
	for i, c := range b {
		code[i] = codeAlphabet[int(c)%len(codeAlphabet)]
	}
	return string(code), nil
}

// ItemID implements IDGenerator.
func (RandomIDs) ItemID() string {
	return uuid.Must(uuid.NewV4()).String()
}
