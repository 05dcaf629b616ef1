package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// FieldError is one failed constraint, reported against the metadata key it
// concerns. Document-level failures use "(root)".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is every constraint a metadata document failed, ordered by field.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// AsFieldErrors extracts the FieldErrors from err's chain.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Check validates md against schema. An empty schema accepts anything.
// Constraint failures are returned as FieldErrors; any other error means the
// schema itself could not be compiled.
func Check(schema map[string]any, md catalog.Metadata) error {
	if len(schema) == 0 {
		return nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("failed to compile metadata schema: %w", err)
	}

	doc := map[string]any(md)
	if doc == nil {
		doc = map[string]any{}
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate metadata: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make(FieldErrors, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, FieldError{Field: fieldOf(desc), Message: desc.Description()})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// fieldOf names the metadata key a result error is about. Required and
// additionalProperties failures are raised on the root object and carry the
// key in their details.
func fieldOf(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required", "additional_property_not_allowed":
		if name, ok := desc.Details()["property"].(string); ok {
			return name
		}
	}
	return desc.Field()
}
