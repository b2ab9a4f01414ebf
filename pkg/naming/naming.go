// Package naming implements the naming conventions that map URI segments to
// handler type names and method names.
//
// A segment is a hyphen separated list of words:
//
//	"user-profile" -> HandlerName -> "UserProfile"
//	"user-profile" -> MethodName  -> "userProfile"
//
// Both transforms wrap the result with a configurable prefix and suffix, so with
// a "Controller" class suffix the segment "user-profile" selects the type
// UserProfileController.
package naming

import (
	"strings"
	"unicode"
)

// HandlerName converts a segment into a handler type name: every word gets an
// upper-case first letter, words are concatenated and wrapped with prefix and
// suffix.
func HandlerName(segment, prefix, suffix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, word := range strings.Split(segment, "-") {
		b.WriteString(upperFirst(word))
	}
	b.WriteString(suffix)
	return b.String()
}

// MethodName converts a segment into a method name. Without a prefix the first
// word keeps a lower-case first letter (camelCase). With a prefix every word is
// capitalised so the prefix reads as the first word ("Action" + "ListAll").
func MethodName(segment, prefix, suffix string) string {
	words := strings.Split(segment, "-")

	var b strings.Builder
	b.WriteString(prefix)
	if prefix == "" {
		b.WriteString(lowerFirst(words[0]))
		words = words[1:]
	}
	for _, word := range words {
		b.WriteString(upperFirst(word))
	}
	b.WriteString(suffix)
	return b.String()
}

// Segment is the inverse of HandlerName and MethodName for listings: prefix and
// suffix are stripped and the remaining CamelCase name is converted to
// kebab-case. Names that do not carry the prefix or suffix are converted as is.
func Segment(name, prefix, suffix string) string {
	name = strings.TrimPrefix(name, prefix)
	name = strings.TrimSuffix(name, suffix)
	return camelToKebab(name)
}

// camelToKebab converts CamelCase to kebab-case
func camelToKebab(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			result.WriteRune('-')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// upperFirst and lowerFirst change the case of an ASCII first byte only,
// other bytes are kept as they are
func upperFirst(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]-'A'+'a') + s[1:]
}
