package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Text  string `json:"text" validate:"max=5"`
	Topic string `json:"topic" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.ValidateStruct(sample{Text: "hi", Topic: "x"}))

	errs := v.ValidateStruct(sample{Text: strings.Repeat("a", 6)})
	assert.Equal(t, map[string]string{
		"text":  "text must be at most 5 characters",
		"topic": "topic is required",
	}, errs)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hel\x00lo \n"))
}
