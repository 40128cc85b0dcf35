package hac65

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexIntToUint16(t *testing.T) {
	cases := []struct {
		in     string
		want   Address
		wantOk bool
	}{
		{"64206", 64206, true},
		{"0xFACE", 0xFACE, true},
		{"$FACE", 0xFACE, true},
		{"0600", 0x180, true},
		{"'A", 'A', true},
		{"  $FF  ", 0xFF, true},
		{"", 0, false},
		{"'", 0, false},
		{"not-a-number", 0, false},
		{"0x1FFFF", 0, false},
	}
	for _, c := range cases {
		got, ok := FlexIntToUint16(c.in)
		if !assert.Equal(t, c.wantOk, ok, "FlexIntToUint16(%q) ok", c.in) {
			continue
		}
		if ok {
			assert.Equal(t, c.want, got, "FlexIntToUint16(%q)", c.in)
		}
	}
}
