package report

// Schema is the JSON Schema (Draft 2020-12) for the typesafe JSON
// report. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/typesafe/report.schema.json",
  "title": "Typesafe Report",
  "description": "Output schema for typesafe run --format=json",
  "type": "object",
  "required": ["version", "results", "summary"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Tool version"
    },
    "results": {
      "type": "array",
      "items": { "$ref": "#/$defs/FileResult" }
    },
    "summary": {
      "type": "object",
      "required": ["files", "passed", "failed", "mismatches"],
      "properties": {
        "files": { "type": "integer", "minimum": 0 },
        "passed": { "type": "integer", "minimum": 0 },
        "failed": { "type": "integer", "minimum": 0 },
        "mismatches": { "type": "integer", "minimum": 0 }
      }
    }
  },
  "$defs": {
    "FileResult": {
      "type": "object",
      "required": ["file", "name", "mismatches", "summary", "metadata"],
      "properties": {
        "file": {
          "type": "string",
          "description": "Absolute path of the checked file"
        },
        "name": {
          "type": "string",
          "description": "Path relative to the project root"
        },
        "mismatches": {
          "type": "array",
          "items": { "$ref": "#/$defs/Mismatch" }
        },
        "summary": { "$ref": "#/$defs/Summary" },
        "metadata": { "$ref": "#/$defs/Metadata" }
      }
    },
    "Mismatch": {
      "type": "object",
      "required": ["id", "line", "kind", "class", "detail"],
      "properties": {
        "id": {
          "type": "string",
          "description": "Stable identifier (mm-XXXXXXXX)"
        },
        "line": {
          "type": "integer",
          "minimum": 0,
          "description": "1-based source line, 0 when not tied to a line"
        },
        "kind": {
          "type": "string",
          "enum": [
            "UnexpectedError", "ErrorMessageMismatch",
            "MissingTypeComment", "TypeMismatch", "NotRaised",
            "UnparseableTypeInfo", "UnknownSeverity",
            "ForeignFileDiagnostic", "CheckerInvocationFailed"
          ]
        },
        "class": {
          "type": "string",
          "enum": ["assertion", "internal"]
        },
        "detail": { "type": "string" },
        "expected": { "type": "string" },
        "actual": { "type": "string" },
        "output": {
          "type": "string",
          "description": "Captured checker output for internal failures"
        }
      }
    },
    "Summary": {
      "type": "object",
      "required": ["expected_errors", "expected_reveals", "diagnostics", "mismatches", "internal"],
      "properties": {
        "expected_errors": { "type": "integer", "minimum": 0 },
        "expected_reveals": { "type": "integer", "minimum": 0 },
        "diagnostics": { "type": "integer", "minimum": 0 },
        "mismatches": { "type": "integer", "minimum": 0 },
        "internal": { "type": "integer", "minimum": 0 }
      }
    },
    "Metadata": {
      "type": "object",
      "required": ["duration_ms"],
      "properties": {
        "checker_version": { "type": "string" },
        "duration_ms": {
          "type": "integer",
          "description": "Run duration in milliseconds"
        },
        "timestamp": { "type": "string" }
      }
    }
  }
}`
