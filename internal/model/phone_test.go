package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	t.Run("representations collapse to one canonical form", func(t *testing.T) {
		variants := []string{
			"+15551234567",
			"15551234567",
			"5551234567",
			"(555) 123-4567",
			"555.123.4567",
			" +1 555 123 4567 ",
		}
		for _, v := range variants {
			got, err := NormalizePhone(v)
			assert.NoError(t, err, "input %q", v)
			assert.Equal(t, "+15551234567", got, "input %q", v)
		}
	})

	t.Run("international numbers keep their country code", func(t *testing.T) {
		got, err := NormalizePhone("+442071838750")
		assert.NoError(t, err)
		assert.Equal(t, "+442071838750", got)
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		for _, v := range []string{"", "   ", "abc", "123", "555-1234", "+1", "5551234567x99"} {
			_, err := NormalizePhone(v)
			assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", v)
		}
	})
}
