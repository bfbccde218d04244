// Package contracts validates backend payloads against embedded JSON schemas
// before they are decoded into models.
package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind names one of the embedded schemas.
type Kind string

const (
	Listing           Kind = "listing"
	Property          Kind = "property"
	SaleTransaction   Kind = "sale_transaction"
	RentalTransaction Kind = "rental_transaction"
)

const schemaBaseURL = "https://portal.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error
)

func load() (map[Kind]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7

		entries, err := fs.Glob(schemaFS, "schemas/*.json")
		if err != nil {
			compileErr = err
			return
		}
		// Register every schema first so $ref between them resolves.
		for _, p := range entries {
			f, err := schemaFS.Open(p)
			if err != nil {
				compileErr = err
				return
			}
			err = compiler.AddResource(schemaBaseURL+path.Base(p), f)
			f.Close()
			if err != nil {
				compileErr = fmt.Errorf("failed to add schema resource %s: %w", p, err)
				return
			}
		}

		out := make(map[Kind]*jsonschema.Schema, len(entries))
		for _, p := range entries {
			name := path.Base(p)
			schema, err := compiler.Compile(schemaBaseURL + name)
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
				return
			}
			out[Kind(strings.TrimSuffix(name, ".json"))] = schema
		}
		compiled = out
	})
	return compiled, compileErr
}

// Validate checks one raw JSON document against the schema of kind.
func Validate(kind Kind, raw []byte) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("schema %q not found", kind)
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s failed schema validation: %w", kind, err)
	}
	return nil
}

// ValidateAll validates each item and reports the first failure with its index.
func ValidateAll(kind Kind, items []json.RawMessage) error {
	for i, raw := range items {
		if err := Validate(kind, raw); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
