package customid

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// RenderRandomDigits draws a value in [0, 10^width) and pads it to width.
func RenderRandomDigits(random RandomSource, width int) string {
	return pad(random.Uint64N(pow10(width)), width)
}

// RenderRandomBits draws a value in [0, 2^bits) and pads it to the decimal
// width of the largest value in that range, so every fragment of a given
// element has the same length.
func RenderRandomBits(random RandomSource, bits int) string {
	n := uint64(1) << uint(bits)
	return pad(random.Uint64N(n), BitsDecimalWidth(bits))
}

// BitsDecimalWidth is the number of decimal digits of 2^bits-1.
func BitsDecimalWidth(bits int) int {
	return len(strconv.FormatUint(uint64(1)<<uint(bits)-1, 10))
}

func RenderGUID(random RandomSource) (string, error) {
	id, err := uuid.NewRandomFromReader(random)
	if err != nil {
		return "", fmt.Errorf("read guid entropy: %w", err)
	}
	return id.String(), nil
}

func RenderDatetime(clock Clock) string {
	return clock.Now().UTC().Format(datetimeLayout)
}

func RenderSequence(value int64, width int) string {
	if width == 0 {
		width = DefaultSequenceWidth
	}
	return fmt.Sprintf("%0*d", width, value)
}

func pad(v uint64, width int) string {
	return fmt.Sprintf("%0*d", width, v)
}

func pow10(width int) uint64 {
	n := uint64(1)
	for range width {
		n *= 10
	}
	return n
}
