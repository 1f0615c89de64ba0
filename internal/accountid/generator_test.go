package accountid

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   string
	}{
		{name: "leading digit only", number: "1000000", want: "0"},
		{name: "second position weight six", number: "0100000", want: "6"},
		{name: "third position weight five", number: "0010000", want: "5"},
		{name: "ascending digits", number: "1234567", want: "0"},
		{name: "all zeros", number: "0000000", want: "0"},
		{name: "longer than weights turn negative", number: "123456789", want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckDigit(tt.number))
		})
	}
}

func TestCheckDigitDeterministic(t *testing.T) {
	for _, number := range []string{"1234567", "9618402", "0000001"} {
		assert.Equal(t, CheckDigit(number), CheckDigit(number), "number %s", number)
	}
}

func TestGenerateShape(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)))

	for range 50 {
		number := gen.Generate("237")
		require.Len(t, number, 7)

		for _, c := range number {
			require.True(t, c >= '0' && c <= '9', "number %q has non-digit %q", number, c)
		}

		// trailing digit is the weighted sum of the first six, mod 6
		last, err := strconv.Atoi(number[6:])
		require.NoError(t, err)
		assert.Less(t, last, 6)
		assert.Equal(t, trailingDigit(number[:6]), last, "number %q", number)
	}
}

func TestGenerateSeededDeterminism(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(99)))
	b := NewGenerator(rand.New(rand.NewSource(99)))

	for range 10 {
		assert.Equal(t, a.Generate("341"), b.Generate("341"))
	}
}

func TestGeneratePadsBankCode(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(7)))
	b := NewGenerator(rand.New(rand.NewSource(7)))

	assert.Equal(t, a.Generate("1"), b.Generate("001"))
}

func trailingDigit(base string) int {
	sum := 0
	for i, c := range base {
		term := int(c-'0') * (3 - i)
		if term < 0 {
			term = -term
		}
		sum += term
	}
	return sum % 6
}
