// Package storage provides the catalog persistence layer for the imager.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/catalog-imager/internal/common"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// identifierPattern allows plain or schema-qualified identifiers.
const identifierPattern = `^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateIdentifier ensures a configured table or column name is safe to
// interpolate into a query.
func validateIdentifier(name, paramName string) error {
	if err := validateString(name, paramName); err != nil {
		return err
	}
	ok, err := common.MatchRegex(identifierPattern, name)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", paramName, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, paramName, name)
	}
	return nil
}
