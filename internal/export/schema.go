package export

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON Schema (Draft 2020-12) for the coverage export
// payload this engine consumes. Load validates every payload against
// it before the typed decode, so shape errors carry a field path.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/covtree/export.schema.json",
  "title": "Coverage Export Payload",
  "description": "llvm-cov style segment-based coverage export",
  "type": "object",
  "required": ["type", "version", "data"],
  "properties": {
    "type": { "type": "string" },
    "version": {
      "type": "string",
      "description": "Export schema version (semver)"
    },
    "data": {
      "type": "array",
      "items": { "$ref": "#/$defs/Mapping" }
    }
  },
  "$defs": {
    "Mapping": {
      "type": "object",
      "required": ["files", "functions", "totals"],
      "properties": {
        "files": {
          "type": "array",
          "items": { "$ref": "#/$defs/FileRecord" }
        },
        "functions": {
          "type": "array",
          "items": { "$ref": "#/$defs/FunctionRecord" }
        },
        "totals": { "$ref": "#/$defs/SummaryBlock" }
      }
    },
    "FileRecord": {
      "type": "object",
      "required": ["filename", "segments"],
      "properties": {
        "filename": { "type": "string" },
        "segments": {
          "type": "array",
          "items": {
            "type": "array",
            "minItems": 6,
            "maxItems": 6,
            "prefixItems": [
              { "type": "integer", "minimum": 0 },
              { "type": "integer", "minimum": 0 },
              { "type": "integer", "minimum": 0 },
              { "type": "boolean" },
              { "type": "boolean" },
              { "type": "boolean" }
            ]
          }
        },
        "branches": {
          "type": "array",
          "items": {
            "type": "array",
            "minItems": 9,
            "maxItems": 9,
            "items": { "type": "integer" }
          }
        },
        "expansions": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "filenames": {
                "type": "array",
                "items": { "type": "string" }
              }
            }
          }
        },
        "summary": { "$ref": "#/$defs/SummaryBlock" }
      }
    },
    "FunctionRecord": {
      "type": "object",
      "required": ["name", "count", "regions", "filenames"],
      "properties": {
        "name": { "type": "string" },
        "count": { "type": "integer", "minimum": 0 },
        "regions": {
          "type": "array",
          "items": {
            "type": "array",
            "minItems": 8,
            "maxItems": 8,
            "items": { "type": "integer" }
          }
        },
        "filenames": {
          "type": "array",
          "items": { "type": "string" }
        }
      }
    },
    "Counts": {
      "type": "object",
      "required": ["count", "covered", "percent"],
      "properties": {
        "count": { "type": "integer", "minimum": 0 },
        "covered": { "type": "integer", "minimum": 0 },
        "notcovered": { "type": "integer", "minimum": 0 },
        "percent": { "type": "number" }
      }
    },
    "SummaryBlock": {
      "type": "object",
      "properties": {
        "lines": { "$ref": "#/$defs/Counts" },
        "functions": { "$ref": "#/$defs/Counts" },
        "instantiations": { "$ref": "#/$defs/Counts" },
        "regions": { "$ref": "#/$defs/Counts" },
        "branches": { "$ref": "#/$defs/Counts" }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
)

// compiledSchema returns the compiled payload schema. The schema is
// a package constant, so compilation cannot fail at runtime; a panic
// here means the constant itself is broken.
func compiledSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
		if err != nil {
			panic("export: parsing embedded schema: " + err.Error())
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("export.schema.json", doc); err != nil {
			panic("export: adding schema resource: " + err.Error())
		}
		schemaCompiled, err = compiler.Compile("export.schema.json")
		if err != nil {
			panic("export: compiling schema: " + err.Error())
		}
	})
	return schemaCompiled
}
