package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func documentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return compiledSchema, schemaErr
}

// Validate checks a document against the embedded resume schema.
func Validate(doc Document) error {
	return validateLoader(gojsonschema.NewGoLoader(doc))
}

// DecodeJSON validates a raw JSON payload and decodes it into a Document.
func DecodeJSON(payload []byte) (Document, error) {
	if len(payload) == 0 {
		return Document{}, errors.New("resume payload is empty", errors.CategoryValidation).
			WithTextCode("RESUME_REQUIRED")
	}
	if err := validateLoader(gojsonschema.NewBytesLoader(payload)); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, errors.New(fmt.Sprintf("invalid resume payload: %v", err), errors.CategoryValidation).
			WithTextCode("RESUME_INVALID")
	}
	return doc, nil
}

func validateLoader(loader gojsonschema.JSONLoader) error {
	schema, err := documentSchema()
	if err != nil {
		return errors.New(fmt.Sprintf("resume schema unavailable: %v", err), errors.CategoryInternal).
			WithTextCode("SCHEMA_UNAVAILABLE")
	}
	result, err := schema.Validate(loader)
	if err != nil {
		return errors.New(fmt.Sprintf("invalid resume payload: %v", err), errors.CategoryValidation).
			WithTextCode("RESUME_INVALID")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New("resume validation failed: "+strings.Join(msgs, "; "), errors.CategoryValidation).
		WithTextCode("RESUME_INVALID")
}
