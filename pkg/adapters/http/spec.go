package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Schema names in the embedded document.
const (
	schemaAnalyticsEvent = "AnalyticsEvent"
	schemaLead           = "Lead"
	schemaFormValues     = "FormValues"
)

// maxBodySize caps request bodies accepted by the server.
const maxBodySize = 1 << 20

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// bodyValidator checks request bodies against component schemas before they
// are decoded into domain types.
type bodyValidator struct {
	doc *openapi3.T
}

// decode reads r, validates it against the named schema, then unmarshals it into dst.
func (v bodyValidator) decode(r io.Reader, schema string, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	ref, ok := v.doc.Components.Schemas[schema]
	if !ok || ref.Value == nil {
		return fmt.Errorf("unknown schema %q", schema)
	}
	if err := ref.Value.VisitJSON(generic, openapi3.MultiErrors()); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	return dec.Decode(dst)
}
