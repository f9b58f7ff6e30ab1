package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Codec groups the serialization primitives used on the wire to enable mocking
//
//go:generate mockgen -source=codec.go -destination=../mocks/codec.go -package=mocks -mock_names=Codec=MockCodec
type Codec interface {
	Marshal(v interface{}) ([]byte, error)

	// Canonical marshals v and transforms the result into RFC 8785 canonical JSON
	Canonical(v interface{}) ([]byte, error)
}

// RealCodec implements Codec with encoding/json and jcs
type RealCodec struct{}

// NewCodec creates a new real codec implementation
func NewCodec() Codec {
	return &RealCodec{}
}

func (c *RealCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (c *RealCodec) Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize: %w", err)
	}
	return out, nil
}
