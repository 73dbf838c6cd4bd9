package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateModuleName validates a dotted module name such as "zeeguu.core.model".
//
// The rules are intentionally conservative:
//   - No empty names and no empty components ("a..b", ".a", "a.")
//   - No control characters, whitespace or path separators
//   - Maximum length of 512 characters
func ValidateModuleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModule, "module name cannot be empty")
	}

	if len(name) > 512 {
		return New(ErrCodeInvalidModule, "module name too long (max 512 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidModule, "module name contains invalid characters: %q", name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidModule, "module name cannot contain path separators: %q", name)
	}

	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return New(ErrCodeInvalidModule, "module name has an empty component: %q", name)
		}
	}

	return nil
}

// ValidatePath validates a file path relative to the analyzed root.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// extensionRegex matches file extensions such as ".py" or ".pyi".
var extensionRegex = regexp.MustCompile(`^\.[A-Za-z0-9_]+$`)

// ValidateExtension validates a source file extension. The leading dot is required.
func ValidateExtension(ext string) error {
	if !extensionRegex.MatchString(ext) {
		return New(ErrCodeInvalidConfig, "invalid file extension: %q (expected e.g. \".py\")", ext)
	}
	return nil
}

// viewNameRegex matches view names usable in URLs and file names.
var viewNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateViewName validates the name of a configured view.
func ValidateViewName(name string) error {
	if !viewNameRegex.MatchString(name) {
		return New(ErrCodeInvalidView, "invalid view name: %q (lowercase letters, digits, '-' and '_')", name)
	}
	return nil
}
