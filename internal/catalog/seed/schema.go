package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "file:///depcatalog/seed.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func loadSchema() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		schemaErr = err
		return
	}
	schema, schemaErr = c.Compile(schemaURL)
}

// validate checks a decoded document (maps, slices and scalars as produced
// by encoding/json) against the seed schema.
func validate(doc any) error {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return fmt.Errorf("compile seed schema: %w", schemaErr)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return nil
}
