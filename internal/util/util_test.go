package util

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain name", input: "a.pdf", expected: "a.pdf"},
		{name: "spaces kept", input: "Week 1 Notes.pdf", expected: "Week 1 Notes.pdf"},
		{name: "forward slash", input: "notes/../../etc/passwd", expected: "notes_.._.._etc_passwd"},
		{name: "backslash", input: "..\\secret.txt", expected: ".._secret.txt"},
		{name: "reserved characters", input: `a:b*c?d"e<f>g|h`, expected: "a_b_c_d_e_f_g_h"},
		{name: "control characters", input: "a\x00b\nc", expected: "a_b_c"},
		{name: "trailing dots and spaces", input: "report. ", expected: "report"},
		{name: "empty", input: "", expected: "_"},
		{name: "dot", input: ".", expected: "_"},
		{name: "dotdot", input: "..", expected: "_"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Sanitize(tc.input))
		})
	}
}

func TestSanitizeNeverEscapesParent(t *testing.T) {
	parent := filepath.Join("mirror", "CS101")

	for _, name := range []string{"../../evil", "..", "x/../../y", `..\..\z`, "/abs/path"} {
		joined := filepath.Join(parent, Sanitize(name))
		assert.True(t, strings.HasPrefix(joined, parent+string(filepath.Separator)),
			"%q resolved outside parent: %s", name, joined)
	}
}
