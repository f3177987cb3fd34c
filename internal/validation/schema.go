// Package validation checks tree payloads against the JSON schema the
// archive exchange format expects before they are stored or emitted.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrTreeInvalid = errors.New("validation: tree payload is invalid")

// treeSchema describes the serialized tree shape: every node has an id and a
// title, container nodes recurse through contents. Ids are ident-hashes
// (uuid@version), bare names for documents adapted without archive identity,
// or the shared translucent id.
const treeSchema = `{
  "$id": "go-epub://schemas/tree.json",
  "type": "object",
  "properties": {
    "id": {
      "type": "string",
      "anyOf": [
        {"const": "subcol"},
        {"pattern": "^[0-9a-fA-F-]{36}(@[0-9.]+)?$"},
        {"minLength": 1}
      ]
    },
    "title": {"type": "string"},
    "contents": {
      "type": "array",
      "items": {"$ref": "#"}
    }
  },
  "required": ["id", "title"],
  "additionalProperties": false
}`

var compiledTreeSchema = mustCompileTreeSchema()

func mustCompileTreeSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tree.json", strings.NewReader(treeSchema)); err != nil {
		panic(fmt.Sprintf("validation: add tree schema: %v", err))
	}
	schema, err := compiler.Compile("tree.json")
	if err != nil {
		panic(fmt.Sprintf("validation: compile tree schema: %v", err))
	}
	return schema
}

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrTreeInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrTreeInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// ValidateTree validates serialized tree JSON against the tree schema.
func ValidateTree(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return &PayloadValidationError{Cause: fmt.Errorf("decode tree: %w", err)}
	}
	return validateTreeValue(payload)
}

// ValidateTreeMap validates an in-memory tree payload against the tree schema.
func ValidateTreeMap(payload map[string]any) error {
	if payload == nil {
		return &PayloadValidationError{Cause: errors.New("tree payload is empty")}
	}
	return validateTreeValue(normalizeJSONValue(payload))
}

func validateTreeValue(payload any) error {
	if err := compiledTreeSchema.Validate(payload); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// normalizeJSONValue re-shapes Go values into the forms the validator
// understands (maps, slices, strings), so callers can pass structs that were
// round-tripped through encoding/json tags.
func normalizeJSONValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = normalizeJSONValue(entry)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = normalizeJSONValue(entry)
		}
		return out
	default:
		return typed
	}
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	leaves := err.BasicOutput().Errors
	issues := make([]ValidationIssue, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.Error == "" {
			continue
		}
		issues = append(issues, ValidationIssue{
			Location: leaf.InstanceLocation,
			Message:  leaf.Error,
		})
	}
	if len(issues) == 0 {
		issues = append(issues, ValidationIssue{
			Location: err.InstanceLocation,
			Message:  err.Message,
		})
	}
	return issues
}
