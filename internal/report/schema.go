package report

// Schema is the JSON Schema (Draft 2020-12) for the covtree report
// JSON output. It documents the structure produced by WriteJSON and
// is printed by `covtree schema`.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/covtree/report.schema.json",
  "title": "Covtree Coverage Report",
  "description": "Output schema for covtree report --format=json",
  "type": "object",
  "required": ["version", "root", "totals"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "root": { "$ref": "#/$defs/DirectoryNode" },
    "totals": { "$ref": "#/$defs/Summary" },
    "diagnostics": {
      "type": "array",
      "items": { "$ref": "#/$defs/Diagnostic" }
    }
  },
  "$defs": {
    "DirectoryNode": {
      "type": "object",
      "required": ["name", "summary"],
      "properties": {
        "name": { "type": "string" },
        "summary": { "$ref": "#/$defs/Summary" },
        "children": {
          "oneOf": [
            {
              "type": "array",
              "items": {
                "oneOf": [
                  { "$ref": "#/$defs/DirectoryChild" },
                  { "$ref": "#/$defs/FileChild" }
                ]
              }
            },
            { "type": "null" }
          ]
        }
      }
    },
    "DirectoryChild": {
      "type": "object",
      "required": ["kind", "name", "summary"],
      "properties": {
        "kind": { "const": "dir" },
        "name": { "type": "string" },
        "summary": { "$ref": "#/$defs/Summary" },
        "children": { "$ref": "#/$defs/DirectoryNode/properties/children" }
      }
    },
    "FileChild": {
      "type": "object",
      "required": ["kind", "name", "path", "summary"],
      "properties": {
        "kind": { "const": "file" },
        "name": { "type": "string" },
        "path": { "type": "string" },
        "summary": { "$ref": "#/$defs/Summary" },
        "line_verdicts": {
          "type": "object",
          "additionalProperties": { "$ref": "#/$defs/LineVerdict" }
        },
        "regions": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/Region" } },
            { "type": "null" }
          ]
        },
        "functions": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/FunctionSummary" } },
            { "type": "null" }
          ]
        }
      }
    },
    "LineVerdict": {
      "type": "object",
      "required": ["status", "max_count", "min_count"],
      "properties": {
        "status": {
          "type": "string",
          "enum": ["covered", "not_covered", "not_instrumented", "mixed"]
        },
        "max_count": { "type": "integer", "minimum": 0 },
        "min_count": { "type": "integer", "minimum": 0 }
      }
    },
    "Region": {
      "type": "object",
      "required": ["start_line", "start_col", "end_line", "end_col", "count", "kind"],
      "properties": {
        "start_line": { "type": "integer" },
        "start_col": { "type": "integer" },
        "end_line": { "type": "integer" },
        "end_col": { "type": "integer" },
        "count": { "type": "integer", "minimum": 0 },
        "kind": { "type": "integer", "minimum": 0, "maximum": 3 }
      }
    },
    "FunctionSummary": {
      "type": "object",
      "required": ["name", "filename", "execution_count", "region_count", "covered_region_count"],
      "properties": {
        "name": { "type": "string" },
        "filename": { "type": "string" },
        "execution_count": { "type": "integer", "minimum": 0 },
        "region_count": { "type": "integer", "minimum": 0 },
        "covered_region_count": { "type": "integer", "minimum": 0 }
      }
    },
    "Summary": {
      "type": "object",
      "required": [
        "lines_covered", "lines_total",
        "regions_covered", "regions_total",
        "functions_covered", "functions_total"
      ],
      "properties": {
        "lines_covered": { "type": "integer", "minimum": 0 },
        "lines_total": { "type": "integer", "minimum": 0 },
        "regions_covered": { "type": "integer", "minimum": 0 },
        "regions_total": { "type": "integer", "minimum": 0 },
        "functions_covered": { "type": "integer", "minimum": 0 },
        "functions_total": { "type": "integer", "minimum": 0 },
        "branches_covered": { "type": "integer", "minimum": 0 },
        "branches_total": { "type": "integer", "minimum": 0 }
      }
    },
    "Diagnostic": {
      "type": "object",
      "required": ["code", "detail"],
      "properties": {
        "code": {
          "type": "string",
          "enum": [
            "segment_order", "missing_file", "external_path",
            "summary_mismatch", "path_filtered"
          ]
        },
        "path": { "type": "string" },
        "detail": { "type": "string" }
      }
    }
  }
}`
