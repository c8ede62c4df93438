package application

import (
	"fmt"
	"strings"

	"thesaurus/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "schemeID" -> "scheme ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"schemeID":  "scheme ID",
		"conceptID": "concept ID",
		"parentID":  "parent ID",
		"title":     "title",
		"lines":     "outline",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateID checks that an id refers to a stored resource
func ValidateID(fieldName string, id int64) error {
	if id <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be positive, got: %d", formatFieldName(fieldName), id),
		}
	}
	return nil
}

// ValidateStructure checks a declared structure before anything is mutated:
// every entry needs a parent key, ids are unique and positive, and nothing
// is its own parent.
func ValidateStructure(structure domain.Structure) error {
	if len(structure) == 0 {
		return &ValidationError{Field: "structure", Message: "structure is empty"}
	}

	seen := make(map[int64]struct{}, len(structure))
	for i, e := range structure {
		field := fmt.Sprintf("structure[%d]", i)
		if err := ValidateID(field, e.ID); err != nil {
			return err
		}
		if !e.HasParent {
			return &ValidationError{Field: field, Message: fmt.Sprintf("concept %d has no parent key", e.ID)}
		}
		if e.Parent != nil && *e.Parent == e.ID {
			return &ValidationError{Field: field, Message: fmt.Sprintf("concept %d is its own parent", e.ID)}
		}
		if _, dup := seen[e.ID]; dup {
			return &ValidationError{Field: field, Message: fmt.Sprintf("concept %d is declared twice", e.ID)}
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
