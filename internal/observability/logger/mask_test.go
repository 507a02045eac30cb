package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com":  "a…@e….com",
		" bob@mail.co.uk ":   "b…@m….co.uk",
		"x@y.io":             "x@y.io",
		"weird@name@host.io": "w…@h….io",
		"nodomain":           "n…n",
		"ab":                 "***",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
