package validator

import "strings"

// NormalizeCPF strips every non-digit from s.
func NormalizeCPF(s string) string {
	var b strings.Builder
	b.Grow(11)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether s, after normalisation, is an 11-digit CPF with
// matching check digits. Sequences of a single repeated digit are rejected.
func ValidCPF(s string) bool {
	d := NormalizeCPF(s)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == 11 {
		return false
	}
	return d[9] == cpfCheckDigit(d[:9]) && d[10] == cpfCheckDigit(d[:10])
}

// cpfCheckDigit computes the next check digit for the given prefix using the
// mod-11 weights (len+1 down to 2).
func cpfCheckDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return byte('0' + r)
}

// CompleteCPF appends the two check digits to a 9-digit base. It returns ""
// when base is not exactly nine digits.
func CompleteCPF(base string) string {
	if len(base) != 9 || NormalizeCPF(base) != base {
		return ""
	}
	withFirst := base + string(cpfCheckDigit(base))
	return withFirst + string(cpfCheckDigit(withFirst))
}
