package typeconv

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Canonical column type families.
const (
	Integer   = "INTEGER"
	Real      = "REAL"
	Decimal   = "DECIMAL"
	Boolean   = "BOOLEAN"
	Text      = "TEXT"
	Binary    = "BINARY"
	Timestamp = "TIMESTAMP"
	JSON      = "JSON"
	UUID      = "UUID"
)

// CanonicalType normalizes a driver's DatabaseTypeName (MySQL/TiDB or
// PostgreSQL spelling) to one of the families above. Unknown names are
// returned upper-cased.
func CanonicalType(typ string) string {
	t := strings.ToUpper(strings.TrimSpace(typ))
	t = strings.TrimPrefix(t, "UNSIGNED ")
	switch t {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "YEAR":
		return Integer
	case "BOOL", "BOOLEAN":
		return Boolean
	case "FLOAT", "DOUBLE", "REAL", "FLOAT4", "FLOAT8":
		return Real
	case "DECIMAL", "NUMERIC":
		return Decimal
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "BPCHAR", "NAME", "ENUM", "SET", "CITEXT":
		return Text
	case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA", "BIT", "GEOMETRY":
		return Binary
	case "DATE", "TIME", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMETZ":
		return Timestamp
	case "JSON", "JSONB":
		return JSON
	case "UUID":
		return UUID
	default:
		return t
	}
}

// Normalize turns a value scanned into an `any` destination into a value
// that encodes as native JSON. Drivers hand back many column types as raw
// bytes; dbType decides how those bytes are read.
func Normalize(v any, dbType string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return fromBytes(x, CanonicalType(dbType))
	case string:
		switch CanonicalType(dbType) {
		case JSON:
			if json.Valid([]byte(x)) {
				return json.RawMessage(x)
			}
		case Decimal:
			if isNumber(x) {
				return json.Number(x)
			}
		}
		return x
	default:
		return v
	}
}

func fromBytes(b []byte, family string) any {
	s := string(b)
	switch family {
	case Binary:
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case Integer:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case Real:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case Boolean:
		if ok, err := strconv.ParseBool(s); err == nil {
			return ok
		}
	case Decimal:
		// kept as the literal digits so no precision is lost
		if isNumber(s) {
			return json.Number(s)
		}
	case JSON:
		if json.Valid(b) {
			return json.RawMessage(s)
		}
	}
	return s
}

// isNumber reports whether s is a JSON number literal. NaN and Infinity,
// which PostgreSQL NUMERIC can hold, are not.
func isNumber(s string) bool {
	if s == "" || !json.Valid([]byte(s)) {
		return false
	}
	c := s[0]
	return c == '-' || (c >= '0' && c <= '9')
}
