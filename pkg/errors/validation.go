package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxExpressionLength bounds the size of an expression accepted from users.
const MaxExpressionLength = 4096

// ValidateExpression checks raw user input before it reaches the tree
// builder. It rejects:
//   - Input longer than [MaxExpressionLength] bytes
//   - Invalid UTF-8
//   - Control characters other than whitespace
//
// Whether the expression is well formed, empty input included, is decided by
// the builder itself.
func ValidateExpression(expr string) error {
	if len(expr) > MaxExpressionLength {
		return New(ErrCodeInvalidExpression, "expression too long (max %d bytes)", MaxExpressionLength)
	}

	if !utf8.ValidString(expr) {
		return New(ErrCodeInvalidExpression, "expression is not valid UTF-8")
	}

	for _, r := range expr {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return New(ErrCodeInvalidExpression, "expression contains invalid control characters")
		}
	}

	return nil
}

// ValidateVarName validates a variable name given with --given or in the
// [vars] config table.
func ValidateVarName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "variable name cannot be empty")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return New(ErrCodeInvalidInput, "invalid variable name: %q", name)
	}
	return nil
}

// ValidateOutputPath validates a file path for rendered output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
