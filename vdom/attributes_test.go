package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFalsy(t *testing.T) {
	for _, v := range []string{"false", "null", "undefined", "0", "-0", "NaN", "0n", "-0n"} {
		assert.True(t, isFalsy(v), v)
	}
	for _, v := range []string{"", "true", "checked", "1", "False", "nan"} {
		assert.False(t, isFalsy(v), v)
	}
}

func TestSkipAttribute(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		allowEvents bool
		want        bool
	}{
		{"href", "/home", false, false},
		{"href", "javascript:alert(1)", false, true},
		{"href", "  JAVA\tSCRIPT : alert(1)", false, true},
		{"src", "data:text/html;base64,PHA+", false, true},
		{"src", "data:image/png;base64,iVBOR", false, false},
		{"xlink:href", "javascript:x", false, true},
		{"title", "javascript:x", false, false},
		{"onclick", "go()", false, true},
		{"onclick", "go()", true, false},
		{"class", "on", false, false},
	}
	for _, tt := range tests {
		got := skipAttribute(tt.name, tt.value, tt.allowEvents)
		assert.Equal(t, tt.want, got, "%s=%q events=%v", tt.name, tt.value, tt.allowEvents)
	}
}

func TestPlainName(t *testing.T) {
	assert.Equal(t, "src", plainName("@src"))
	assert.Equal(t, "checked", plainName("#checked"))
	assert.Equal(t, "class", plainName("class"))
}
