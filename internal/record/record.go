// Package record holds the ordered, schema-less representation of one row.
package record

import (
	"bytes"
	"encoding/json"
)

// Field is one column of a row.
type Field struct {
	Name  string
	Value any
}

// Record is a row as column/value pairs in result-set order. The columns
// are whatever the table has when the query runs.
type Record []Field

// Zip pairs column names with values. Both slices must have equal length.
func Zip(columns []string, values []any) Record {
	r := make(Record, len(columns))
	for i, c := range columns {
		r[i] = Field{Name: c, Value: values[i]}
	}
	return r
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Name
	}
	return cols
}

// MarshalJSON encodes the record as a JSON object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
