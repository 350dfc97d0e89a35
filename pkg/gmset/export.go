package gmset

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// An Export is the file written by the export action.
type Export struct {
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	Items          []Item `json:"items"`
}

// Filename returns the name of the export file.
func (e Export) Filename() string {
	id := e.CollectionID
	if id == "" {
		id = "local"
	}
	return fmt.Sprintf("grand-master-%s.json", id)
}

// WriteTo writes the pretty-printed export.
func (e Export) WriteTo(w io.Writer) (int64, error) {
	if e.Items == nil {
		e.Items = []Item{}
	}

	payload, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return 0, errors.Wrap(err, "could not serialize export")
	}

	n, err := w.Write(payload)
	return int64(n), errors.Wrap(err, "could not write export")
}

// ReadExport reads an export previously written by WriteTo.
func ReadExport(r io.Reader) (Export, error) {
	var e Export
	err := json.NewDecoder(r).Decode(&e)
	return e, errors.Wrap(err, "could not parse export")
}
