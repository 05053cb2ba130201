package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passthrough", "Spacious 2BHK near the metro", "Spacious 2BHK near the metro"},
		{"empty", "", ""},
		{"whitespace trimmed", "  hello  ", "hello"},
		{"tags removed", "<p>Premium <b>sea-facing</b> apartment</p>", "Premium sea-facing apartment"},
		{"block elements collapse whitespace", "<div>line one</div>\n<div>line two</div>", "line one line two"},
		{"nested markup", "<ul><li>lift</li><li>parking</li></ul>", "lift parking"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripHTML(tc.in))
		})
	}
}
