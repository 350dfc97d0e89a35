// Package structs projects struct fields by name.
package structs

import (
	"github.com/oleiade/reflections"
	"github.com/pkg/errors"
)

// A Projection is an ordered subset of struct fields.
type Projection struct {
	Fields []string
	Values []any
}

// GetField returns the value of the provided obj field. obj can whether be a structure or pointer to structure.
func GetField(obj any, name string) (any, error) {
	v, err := reflections.GetField(obj, name)
	return v, errors.Wrapf(err, "field %s", name)
}

// Project returns the values of the given fields, in order.
func Project(obj any, fields []string) (Projection, error) {
	p := Projection{
		Fields: fields,
		Values: make([]any, 0, len(fields)),
	}

	for _, name := range fields {
		ok, err := reflections.HasField(obj, name)
		if err != nil {
			return p, errors.Wrap(err, "could not inspect object")
		}
		if !ok {
			return p, errors.Errorf("unknown field %s", name)
		}

		v, err := GetField(obj, name)
		if err != nil {
			return p, err
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Map returns the projection as a field name to value map.
func (p Projection) Map() map[string]any {
	m := make(map[string]any, len(p.Fields))
	for i, name := range p.Fields {
		m[name] = p.Values[i]
	}
	return m
}
