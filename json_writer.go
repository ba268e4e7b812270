package fund

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose keys appear in the order they
// were added. Its zero value is ready to use.
type jsonObjectWriter struct {
	fields []jsonField
	err    error
}

type jsonField struct {
	key string
	raw json.RawMessage
}

// Append adds a key with the JSON encoding of value.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	w.fields = append(w.fields, jsonField{key, raw})
	return w
}

// Optional adds the key only when value is not its type's zero value.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// EmbedFrom flattens the JSON object encoding of v into the object under
// construction, preserving v's own key order.
func (w *jsonObjectWriter) EmbedFrom(v any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal for embedding: %w", err)
		return w
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		w.err = fmt.Errorf("cannot embed a non-object value")
		return w
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			w.err = err
			return w
		}
		key, ok := tok.(string)
		if !ok {
			w.err = fmt.Errorf("unexpected token %v while embedding", tok)
			return w
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			w.err = err
			return w
		}
		w.fields = append(w.fields, jsonField{key, val})
	}
	return w
}

// MarshalJSON assembles the object. It satisfies json.Marshaler.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range w.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
