package errors

import (
	"strings"
	"unicode"
)

// MaxPackageNameLen bounds package names.
const MaxPackageNameLen = 256

// ValidatePackageName checks that name can serve as a cache file name, a URL
// path segment and the left side of a "name:requirement" request. A valid
// name starts with a letter, digit or underscore and contains no whitespace,
// control characters, path separators, ".." or any of the characters
// ":*?[".
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > MaxPackageNameLen {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", MaxPackageNameLen)
	}
	if first := rune(name[0]); first != '_' && !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return New(ErrCodeInvalidPackage, "package name %q must start with a letter, digit or underscore", name)
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name %q contains \"..\"", name)
	}
	if i := strings.IndexFunc(name, invalidNameRune); i >= 0 {
		return New(ErrCodeInvalidPackage, "package name %q contains invalid character %q", name, name[i])
	}
	return nil
}

func invalidNameRune(r rune) bool {
	return unicode.IsControl(r) || unicode.IsSpace(r) || strings.ContainsRune(`/\:*?[`, r)
}
