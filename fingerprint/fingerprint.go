// Package fingerprint derives stable identity keys from record contents so
// that a record seen twice is stored once.
package fingerprint

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Field is one named scalar of a record.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered mapping of scalars. Order does not affect the digest.
type Fields []Field

// Of returns the MD5 hex digest of fields serialized as compact JSON with
// sorted keys. Values may be strings, booleans, integers, floats,
// decimal.Decimal or time.Time. Times at midnight serialize as YYYY-MM-DD.
// When a key repeats, the last value wins.
func Of(fields Fields) (string, error) {
	canonical, err := Canonical(fields)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Canonical returns the serialization that Of hashes.
func Canonical(fields Fields) ([]byte, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := scalar(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		values[f.Key] = v
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encode(&buf, values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Bytes returns the MD5 hex digest of parts written back to back.
func Bytes(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func scalar(v any) (any, error) {
	switch v := v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return v, nil
	case decimal.Decimal:
		return json.Number(v.String()), nil
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly), nil
		}
		return v.Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
