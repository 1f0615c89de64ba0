// Package accountid produces bank-scoped account numbers and their
// verification digits.
package accountid

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// Generator derives account numbers from a bank code mixed with draws from
// an injected random source. Two calls with the same bank code may collide,
// so callers must verify uniqueness after generation and retry.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns a seven-digit account number: one pseudo-random two-digit
// pair per character of the zero-padded bank code, plus a trailing digit
// computed with weights descending from 3, modulo 6.
func (g *Generator) Generate(bankCode string) string {
	code := padBankCode(bankCode)

	var b strings.Builder
	for _, c := range code {
		pair := int(math.Abs(math.Sin(float64(c-'0')) * float64(g.draw())))
		fmt.Fprintf(&b, "%02d", pair)
	}

	base := b.String()
	return base + weightedDigit(base, 3, 6)
}

// CheckDigit returns the verification digit for an account number: each
// digit scaled by a weight descending from 7, summed and reduced modulo 7.
// Deterministic: the same number always yields the same digit.
func CheckDigit(accountNumber string) string {
	return weightedDigit(accountNumber, 7, 7)
}

func (g *Generator) draw() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(99)
}

func weightedDigit(number string, start, mod int) string {
	sum := 0
	for i, c := range number {
		term := int(c-'0') * (start - i)
		if term < 0 {
			term = -term
		}
		sum += term
	}
	return strconv.Itoa(sum % mod)
}

func padBankCode(code string) string {
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}
