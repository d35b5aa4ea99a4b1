package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a generic type to represent any parsed value.
// This can be a string, float64, bool, *Record, or Array.
type Value interface{}

// Array represents an ordered sequence of Values.
type Array []Value

// RecordBlock is the raw text span of one record occurrence, as isolated
// by the extractor. Braces are balanced by construction. Line is the
// 1-based line number the block started on, for diagnostics.
type RecordBlock struct {
	Text string
	Line int
}

// Record is an ordered mapping from string keys to Values. Key order
// matches the order keys first appear in the source text; setting an
// existing key replaces its value without moving it.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores a value under key. Last write wins; the key keeps the
// position of its first appearance.
func (r *Record) Set(key string, v Value) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the record's keys in insertion order. The returned slice
// is shared; callers must not modify it.
func (r *Record) Keys() []string {
	return r.keys
}

// Len returns the number of keys in the record.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object with keys in
// insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalValue(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue encodes any Value as compact JSON. Whole numbers render
// without a trailing ".0" so integer-looking input stays readable.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case *Record:
		return val.MarshalJSON()
	case Array:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := MarshalValue(elem)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case float64:
		return []byte(strconv.FormatFloat(val, 'g', -1, 64)), nil
	default:
		return json.Marshal(v)
	}
}

// EncodeCompact returns the record's compact JSON encoding. It is the
// canonical form used for structural equality and path matching.
func (r *Record) EncodeCompact() string {
	b, err := r.MarshalJSON()
	if err != nil {
		// Record values are limited to JSON-encodable types, so this
		// only triggers on a corrupted Value union.
		return ""
	}
	return string(b)
}

// Equal reports structural equality of two records, including key order.
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return r == nil
	}
	return r.EncodeCompact() == other.EncodeCompact()
}
