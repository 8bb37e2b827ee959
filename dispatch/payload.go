package dispatch

import (
	"fmt"

	cborlib "github.com/fxamacker/cbor/v2"
)

// EncodePayload encodes ordered payload values as a single CBOR array, the
// wire form every foreign send receives. A nil or empty payload encodes as
// an empty array, so "no arguments" is still a well-formed message body.
func EncodePayload(values []any) ([]byte, error) {
	if values == nil {
		values = []any{}
	}
	raw, err := cborlib.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return raw, nil
}

// DecodePayload decodes a CBOR payload array back into values. Used by
// runtimes hosted in-process; a native foreign runtime decodes on its own
// side of the boundary.
func DecodePayload(raw []byte) ([]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []any
	if err := cborlib.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return values, nil
}

// DecodeResult decodes a raw CBOR dispatch result into v, for callers that
// want a structured value instead of raw bytes. Empty input is an error:
// a foreign call that returned nothing has nothing to decode.
func DecodeResult(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty dispatch result")
	}
	if err := cborlib.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// EncodeResult encodes a single result value as CBOR. The counterpart of
// DecodeResult, used by in-process runtimes when producing send results.
func EncodeResult(v any) ([]byte, error) {
	raw, err := cborlib.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return raw, nil
}
