package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateRenderer validates a renderer command for safety before it is
// handed to the operating system.
//
// The validation rules are intentionally conservative:
//   - No empty commands
//   - No control characters or null bytes
//   - No whitespace (arguments are not accepted here)
//   - Maximum length of 256 characters
//
// Absolute and relative paths are allowed so installations outside PATH
// (e.g. /opt/graphviz/bin/dot) keep working.
func ValidateRenderer(cmd string) error {
	if cmd == "" {
		return New(ErrCodeInvalidInput, "renderer command cannot be empty")
	}

	if len(cmd) > 256 {
		return New(ErrCodeInvalidInput, "renderer command too long (max 256 characters)")
	}

	for _, r := range cmd {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "renderer command contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "renderer command cannot contain whitespace")
		}
	}

	return nil
}

// formatRegex matches renderer output format tokens. Graphviz accepts plain
// formats ("png", "svg") and qualified ones ("png:cairo:gd").
var formatRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+(:[A-Za-z0-9._-]+)*$`)

// ValidateFormat validates an image format token such as "png" or "svg".
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "image format cannot be empty")
	}

	if !formatRegex.MatchString(format) {
		return New(ErrCodeInvalidFormat, "invalid image format: %q", format)
	}

	return nil
}

// ValidateOutputRoot validates the directory all rendered images are written
// beneath.
func ValidateOutputRoot(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output root cannot be empty")
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output root contains invalid characters")
		}
	}

	return nil
}

// filterNameRegex matches downstream filter names ("textile", "markdown").
var filterNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateFilterName validates a downstream filter name.
func ValidateFilterName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilter, "filter name cannot be empty")
	}

	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidFilter, "filter names must be lowercase: %q", name)
	}

	if !filterNameRegex.MatchString(name) {
		return New(ErrCodeInvalidFilter, "invalid filter name: %q", name)
	}

	return nil
}

// ValidateFilterNames validates a list of downstream filter names.
func ValidateFilterNames(names []string) error {
	for _, name := range names {
		if err := ValidateFilterName(name); err != nil {
			return err
		}
	}
	return nil
}
