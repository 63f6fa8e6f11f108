package auth

import (
	"strings"
	"unicode"
)

// PolicyResult is the outcome of checking a candidate password against
// the composition policy. When OK is false, Message holds the reason for
// the first rule that failed, worded for direct display to the user.
type PolicyResult struct {
	OK      bool
	Message string
}

// CheckPasswordPolicy validates a candidate password for the given
// account email.
//
// Rules, checked in order (first violation wins):
//
//  1. Length: at least 8 characters.
//  2. Composition: at least one uppercase letter, one lowercase letter,
//     one digit, and one symbol. Underscore counts as a symbol.
//  3. Email similarity: the password must not contain the local part of
//     the account email (case-insensitive substring).
//
// The email-similarity rule is why the email is a parameter here rather
// than the policy being a pure function of the password: "hunter2" is a
// bad password for everyone, but "S3cret!bob" is specifically bad for
// bob@example.com.
func CheckPasswordPolicy(password, email string) PolicyResult {
	if len(password) < 8 {
		return PolicyResult{Message: "Password must be at least 8 characters long"}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			// Everything that is not a letter or digit, including
			// underscore and whitespace, counts as a symbol.
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return PolicyResult{
			Message: "Password must include uppercase, lowercase, number, and special character",
		}
	}

	localPart := strings.ToLower(email)
	if at := strings.IndexByte(localPart, '@'); at >= 0 {
		localPart = localPart[:at]
	}
	if localPart != "" && strings.Contains(strings.ToLower(password), localPart) {
		return PolicyResult{Message: "Password should not contain part of the email"}
	}

	return PolicyResult{OK: true}
}
