package lib

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_ReadFromSkip(t *testing.T) {
	b := New(8)
	n, err := b.ReadFrom(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, b.Len())
	require.NoError(t, b.Skip(2))
	assert.Equal(t, "llo", string(b.Bytes()))

	// 空间不足时先压缩再扩容
	_, err = b.ReadFrom(strings.NewReader("world!"), 6)
	require.NoError(t, err)
	assert.Equal(t, "lloworld!", string(b.Bytes()))

	assert.Error(t, b.Skip(100))
	require.NoError(t, b.Skip(b.Len()))
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Bytes())
}

func TestBuffer_ReadFrom(t *testing.T) {
	b := New(4)
	r := bytes.NewReader([]byte("abcdefgh"))
	total := 0
	for {
		n, err := b.ReadFrom(r, 3)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, 8, total)
	assert.Equal(t, "abcdefgh", string(b.Bytes()))
}
