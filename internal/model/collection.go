package model

// A Collection represents a database record. Its ID is the shared collection code.
type Collection struct {
	Base `msgpack:",inline" storm:"inline"`

	Name string `msgpack:"name"`
}
