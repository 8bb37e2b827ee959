package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/machinefabric/objbridge-go/obj"
)

// SchemaValidationError reports a payload that failed its selector's
// declared JSON schema before any probe or send took place.
type SchemaValidationError struct {
	Selector obj.Selector `json:"selector"`
	Details  string       `json:"details"`
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("payload validation failed for selector %d: %s", uint64(e.Selector), e.Details)
}

// validatePayload checks payload against the catalog's declared schema for
// sel, if any. Selectors without a schema (or dispatchers without a
// catalog) pass unchecked - validation is opt-in per selector.
func (d *Dispatcher) validatePayload(sel obj.Selector, payload []any) error {
	if d.catalog == nil {
		return nil
	}
	schema, ok := d.catalog.PayloadSchema(sel)
	if !ok {
		return nil
	}

	// gojsonschema consumes JSON documents, so the payload value array is
	// bridged through encoding/json for validation purposes only; the wire
	// form stays CBOR.
	doc, err := json.Marshal(payloadDocument(payload))
	if err != nil {
		return &SchemaValidationError{
			Selector: sel,
			Details:  fmt.Sprintf("payload is not representable as a JSON document: %v", err),
		}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &SchemaValidationError{Selector: sel, Details: err.Error()}
	}
	if !result.Valid() {
		var details []string
		for _, fieldErr := range result.Errors() {
			details = append(details, fieldErr.String())
		}
		return &SchemaValidationError{Selector: sel, Details: strings.Join(details, "; ")}
	}
	return nil
}

// payloadDocument normalizes a payload for validation: nil becomes an empty
// array so "no arguments" validates against array-typed schemas the same
// way it encodes on the wire.
func payloadDocument(payload []any) []any {
	if payload == nil {
		return []any{}
	}
	return payload
}
