package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestE164(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		region string
		want   string
	}{
		{"international", "+7 (495) 123-45-67", "", "+74951234567"},
		{"trunk prefix", "8 (495) 123-45-67", "RU", "+74951234567"},
		{"lower case region", "8 (495) 123-45-67", "ru", "+74951234567"},
		{"first of several", "+7 (495) 123-45-67, +7 (495) 765-43-21", "", "+74951234567"},
		{"garbage", "звоните", "", ""},
		{"empty", "  ", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, E164(tc.raw, tc.region))
		})
	}
}
