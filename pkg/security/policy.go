package security

import (
	"fmt"
	"strings"
	"unicode"
)

// commonPasswords is a short deny-list of the passwords seen most often in
// credential dumps.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwerty123": {}, "qwertyuiop": {},
	"iloveyou": {}, "sunshine": {}, "princess": {}, "football": {},
	"baseball": {}, "welcome1": {}, "letmein1": {}, "abc12345": {},
	"11111111": {}, "00000000": {}, "passw0rd": {}, "trustno1": {},
	"superman": {}, "starwars": {}, "whatever": {}, "dragon123": {},
	"admin123": {}, "qwerty12": {}, "monkey123": {}, "master123": {},
}

// PasswordContext carries the user attributes a password must not resemble.
type PasswordContext struct {
	Email     string
	FirstName string
	LastName  string
}

// ValidatePassword applies the account password policy and returns every
// violated rule. An empty result means the password is acceptable.
func ValidatePassword(password string, minLength int, pc PasswordContext) []string {
	if minLength <= 0 {
		minLength = 8
	}

	var problems []string
	if len([]rune(password)) < minLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minLength))
	}
	if password != "" && isAllDigits(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}
	if attr := similarAttribute(password, pc); attr != "" {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", attr))
	}
	return problems
}

func isAllDigits(value string) bool {
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarAttribute(password string, pc PasswordContext) string {
	lowered := strings.ToLower(password)
	if lowered == "" {
		return ""
	}

	localPart, _, _ := strings.Cut(strings.ToLower(pc.Email), "@")
	candidates := []struct {
		name  string
		value string
	}{
		{name: "email address", value: localPart},
		{name: "first name", value: strings.ToLower(pc.FirstName)},
		{name: "last name", value: strings.ToLower(pc.LastName)},
	}
	for _, c := range candidates {
		if len(c.value) < 3 {
			continue
		}
		if strings.Contains(lowered, c.value) || strings.Contains(c.value, lowered) {
			return c.name
		}
		if similarity(lowered, c.value) >= 0.7 {
			return c.name
		}
	}
	return ""
}

// similarity returns a 0..1 ratio derived from the Levenshtein distance.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
