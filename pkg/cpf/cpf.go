// Package cpf validates Brazilian CPF numbers (11-digit national IDs with two
// trailing check digits). The same code is linked into the wizard client and
// the submission handler, so both sides agree on what a valid CPF is.
package cpf

// Normalize strips every non-digit character from raw.
func Normalize(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// Valid reports whether raw is a structurally correct CPF. The input is
// normalized first, must be exactly 11 digits, must not be a run of one
// repeated digit, and both check digits must match the weighted mod-11 sum.
func Valid(raw string) bool {
	s := Normalize(raw)
	if len(s) != 11 {
		return false
	}
	if allSame(s) {
		return false
	}
	return checkDigit(s, 9) == int(s[9]-'0') && checkDigit(s, 10) == int(s[10]-'0')
}

// checkDigit computes the expected check digit at position t. The digit at
// index i is weighted (t+1-i), summed over the t digits preceding position t;
// remainders below 2 map to 0, everything else to 11-remainder.
func checkDigit(s string, t int) int {
	sum := 0
	for i := 0; i < t; i++ {
		sum += int(s[i]-'0') * (t + 1 - i)
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
