package httpclient

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONOptions controls how DecodeJSON parses a document.
type JSONOptions struct {
	// UseNumber keeps numbers as json.Number instead of float64, so large
	// integers survive without loss.
	UseNumber bool

	// AllowFragments accepts a top-level value that is neither an object
	// nor an array, e.g. a bare string or number.
	AllowFragments bool
}

// DecodeJSON parses data as a single JSON document into the generic tree
// (map[string]any, []any, string, float64 or json.Number, bool, nil).
//
// Parse errors are returned exactly as the JSON decoder reports them.
func DecodeJSON(data []byte, opts JSONOptions) Result[any] {
	dec := json.NewDecoder(bytes.NewReader(data))
	if opts.UseNumber {
		dec.UseNumber()
	}

	var v any
	if err := dec.Decode(&v); err != nil {
		return Failure[any](err)
	}
	// Decode stops after the first value; anything but whitespace after it,
	// including a stray closing bracket, makes the document invalid.
	if !json.Valid(data) {
		return Failure[any](errors.New("json: unexpected data after top-level value"))
	}

	if !opts.AllowFragments {
		switch v.(type) {
		case map[string]any, []any:
		default:
			return Failure[any](fmt.Errorf("json: top-level value is %T and fragments are not allowed", v))
		}
	}

	return Success(v)
}

// Decoder decodes a response body into a Go value.
type Decoder interface {
	Unmarshal(data []byte, v any) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, v any) error

// Unmarshal calls f(data, v).
func (f DecoderFunc) Unmarshal(data []byte, v any) error {
	return f(data, v)
}

// JSONDecoder decodes JSON bodies with github.com/goccy/go-json.
type JSONDecoder struct {
	// UseNumber decodes numbers into interface values as json.Number.
	UseNumber bool

	// DisallowUnknownFields rejects object keys that match no field of the
	// destination struct.
	DisallowUnknownFields bool
}

// Unmarshal implements Decoder.
func (d JSONDecoder) Unmarshal(data []byte, v any) error {
	if !d.UseNumber && !d.DisallowUnknownFields {
		return json.Unmarshal(data, v)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if d.UseNumber {
		dec.UseNumber()
	}
	if d.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

// XMLDecoder decodes XML bodies with encoding/xml.
type XMLDecoder struct{}

// Unmarshal implements Decoder.
func (XMLDecoder) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

// YAMLDecoder decodes YAML bodies with gopkg.in/yaml.v3.
type YAMLDecoder struct {
	// KnownFields rejects mapping keys that match no field of the
	// destination struct.
	KnownFields bool
}

// Unmarshal implements Decoder.
func (d YAMLDecoder) Unmarshal(data []byte, v any) error {
	if !d.KnownFields {
		return yaml.Unmarshal(data, v)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// DecodeValue decodes data into a new T with decoder. A nil decoder means
// JSONDecoder{}. Decoder errors are returned unchanged.
//
// Example:
//
//	type Product struct {
//	    Title string `json:"title"`
//	}
//	product, err := httpclient.DecodeValue[Product](body, nil).Get()
func DecodeValue[T any](data []byte, decoder Decoder) Result[T] {
	if decoder == nil {
		decoder = JSONDecoder{}
	}

	var v T
	if err := decoder.Unmarshal(data, &v); err != nil {
		return Failure[T](err)
	}
	return Success(v)
}
