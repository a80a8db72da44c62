package diagnostic

// OutputSchema is the JSON Schema (Draft 2020-12) that pyright's
// --outputjson document must satisfy before it is normalized. Only
// the fields the reconciliation relies on are constrained.
const OutputSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/typesafe/pyright-output.schema.json",
  "title": "Pyright JSON output",
  "type": "object",
  "required": ["summary", "generalDiagnostics"],
  "properties": {
    "version": { "type": "string" },
    "summary": {
      "type": "object",
      "required": ["filesAnalyzed", "errorCount", "warningCount", "informationCount", "timeInSec"],
      "properties": {
        "filesAnalyzed": { "type": "integer" },
        "errorCount": { "type": "integer" },
        "warningCount": { "type": "integer" },
        "informationCount": { "type": "integer" },
        "timeInSec": { "type": "number" }
      }
    },
    "generalDiagnostics": {
      "type": "array",
      "items": { "$ref": "#/$defs/Diagnostic" }
    }
  },
  "$defs": {
    "Diagnostic": {
      "type": "object",
      "required": ["file", "severity", "message", "range"],
      "properties": {
        "file": { "type": "string" },
        "severity": { "type": "string" },
        "message": { "type": "string" },
        "rule": { "type": "string" },
        "range": {
          "type": "object",
          "required": ["start", "end"],
          "properties": {
            "start": { "$ref": "#/$defs/Position" },
            "end": { "$ref": "#/$defs/Position" }
          }
        }
      }
    },
    "Position": {
      "type": "object",
      "required": ["line", "character"],
      "properties": {
        "line": { "type": "integer", "minimum": 0 },
        "character": { "type": "integer", "minimum": 0 }
      }
    }
  }
}`
