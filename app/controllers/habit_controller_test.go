package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCsvField(t *testing.T) {
	assert.Equal(t, "Drink water", csvField("Drink water"))
	assert.Equal(t, `"Read, daily"`, csvField("Read, daily"))
	assert.Equal(t, `"Say ""hi"""`, csvField(`Say "hi"`))
	assert.Equal(t, "\"two\nlines\"", csvField("two\nlines"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "x", firstNonEmpty("x"))
}
