package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSupportedTypes(t *testing.T) {
	for _, name := range []string{"notes.txt", "README.md", "guide.MARKDOWN"} {
		text, err := Text(name, []byte("hello world"))
		require.NoError(t, err, name)
		assert.Equal(t, "hello world", text)
	}
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text("report.pdf", []byte("%PDF-1.4"))
	require.Error(t, err)

	var unsupported *ErrUnsupportedType
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".pdf", unsupported.Extension)
}

func TestTextRejectsBinaryGarbage(t *testing.T) {
	_, err := Text("broken.txt", []byte{0xff, 0xfe, 0x00, 0x80})
	assert.Error(t, err)
}
