package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question and reports whether the operator accepted.
// Only "y" or "yes" (any case) accepts; an empty answer or end of input
// declines.
func Confirm(ctx context.Context, reader *NonBlockingReader, writer io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(writer, "\n"+FormatPrompt(question+" (y/N)")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
