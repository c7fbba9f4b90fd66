// Package codec encodes and decodes the structured bodies of device messages.
//
// JSON is the default wire format. CBOR carries the same field names and
// shapes in a compact binary form for constrained links.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Supported codec names.
const (
	NameJSON = "json"
	NameCBOR = "cbor"
)

var mapStringAnyType = reflect.TypeOf(map[string]any(nil))

// ErrUnknownCodec is returned by ByName for an unsupported codec name.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec marshals message bodies.
type Codec interface {
	// Name returns the codec identifier used in configuration.
	Name() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// ByName returns the codec registered under name (case-insensitive).
// An empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameJSON:
		return JSON{}, nil
	case NameCBOR:
		return NewCBOR()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSON is the encoding/json codec.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return NameJSON }

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CBOR is the fxamacker/cbor codec.
//
// Maps decode with string keys so that command bodies look the same as
// their JSON counterparts when decoded into map[string]any.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR builds a CBOR codec with deterministic map encoding.
func NewCBOR() (*CBOR, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("codec: cbor encoder: %w", err)
	}

	dec, err := cbor.DecOptions{
		DefaultMapType: mapStringAnyType,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("codec: cbor decoder: %w", err)
	}

	return &CBOR{enc: enc, dec: dec}, nil
}

// Name implements Codec.
func (*CBOR) Name() string { return NameCBOR }

// Marshal implements Codec.
func (c *CBOR) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

// Unmarshal implements Codec.
func (c *CBOR) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
