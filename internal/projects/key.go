package projects

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const maxKeyLetters = 4

// BaseKey derives a short upper-case key from a project name:
// "Kartavya PMS" becomes "KP", "Platform" becomes "PLAT".
func BaseKey(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	if len(words) > 1 {
		for _, w := range words {
			if b.Len() == maxKeyLetters {
				break
			}
			b.WriteRune(unicode.ToUpper([]rune(w)[0]))
		}
	} else if len(words) == 1 {
		for _, r := range words[0] {
			if b.Len() == maxKeyLetters {
				break
			}
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	if b.Len() == 0 {
		return "PRJ"
	}
	return b.String()
}

// SuffixedKey appends a random number to base for retrying a taken key.
func SuffixedKey(base string) (string, error) {
	n, err := randInt(10, 999)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", base, n), nil
}

func randInt(min, max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return 0, err
	}
	return min + n.Int64(), nil
}
