package core

import (
	"bytes"
	"encoding/json"
)

// Field is one named, normalized value of a record.
type Field struct {
	Name  string
	Value Value
}

// Record is one classified, normalized, keyed row. Records are not modified
// after assembly.
type Record struct {
	Key    string
	Fields []Field
}

// Get returns the named field's value. Unknown names are absent.
func (r Record) Get(name string) Value {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return AbsentValue()
}

// MarshalJSON encodes the fields as an object in layout order. Absent
// values are written as null, never omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.Name, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Store maps keys to records and remembers first-insertion order.
//
// A second record with an existing key replaces the first (last write wins)
// but keeps the first one's position, so output order depends only on the
// order keys were first seen.
type Store struct {
	keys    []string
	records map[string]Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Put inserts r. Returns true if it replaced a record with the same key.
func (s *Store) Put(r Record) bool {
	_, exists := s.records[r.Key]
	if !exists {
		s.keys = append(s.keys, r.Key)
	}
	s.records[r.Key] = r
	return exists
}

// Get returns the record stored under key.
func (s *Store) Get(key string) (Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.keys) }

// Keys returns keys in first-insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Records returns records in first-insertion order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.records[k]
	}
	return out
}

// Preview returns at most n records from the front of the store.
func (s *Store) Preview(n int) []Record {
	if n > len(s.keys) || n < 0 {
		n = len(s.keys)
	}
	out := make([]Record, n)
	for i, k := range s.keys[:n] {
		out[i] = s.records[k]
	}
	return out
}

// MarshalJSON encodes the store as one object keyed by record key, in
// insertion order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, k, s.records[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, v json.Marshaler) error {
	key, err := marshalString(name)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping, so
// station names and markers stay readable in the output file.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
