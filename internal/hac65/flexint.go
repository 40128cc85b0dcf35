package hac65

import (
	"strconv"
	"strings"
)

// FlexIntToUint16 parses the flexible integer syntax overlays and CLI
// flags accept: decimal ("64206"), hex with a 0x or $ prefix
// ("0xFACE", "$FACE"), C-style octal ("0600"), or a single-quoted
// character literal ("'A") whose byte value is taken directly. It
// mirrors the original's regex-driven FlexIntToUint16, minus the regex:
// Go's strconv already understands 0x/0/decimal via base 0.
func FlexIntToUint16(s string) (Address, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if s[0] == '\'' {
		if len(s) != 2 {
			return 0, false
		}
		return Address(s[1]), true
	}

	if s[0] == '$' {
		s = "0x" + s[1:]
	}

	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, false
	}
	return Address(v), true
}
