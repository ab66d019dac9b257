package db

import (
	"math"
	"strconv"
)

// Coerce reads the leading decimal prefix of s. Leading blanks and one '+'
// are skipped, trailing garbage is ignored, text without digits yields 0 and
// values beyond 32 bits saturate.
func Coerce(s string) uint32 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '\v' || s[i] == '\f') {
		i++
	}
	if i < len(s) && s[i] == '+' {
		i++
	}

	var n uint64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + uint64(s[i]-'0')
		if n > math.MaxUint32 {
			return math.MaxUint32
		}
	}

	return uint32(n)
}

// Decimal renders n in base 10.
func Decimal(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}
