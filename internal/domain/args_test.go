package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levuro/jobqueue/internal/domain"
)

func TestEncodeDecodeArgs_RoundTrip(t *testing.T) {
	args := []string{"-v", "--flag=1", "path/to/file"}
	encoded, err := domain.EncodeArgs(args)
	require.NoError(t, err)

	decoded, err := domain.DecodeArgs(encoded)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)
}

func TestEncodeArgs_NilBecomesEmptyArray(t *testing.T) {
	encoded, err := domain.EncodeArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}

func TestDecodeArgs_EmptyBytesBecomeEmptySlice(t *testing.T) {
	decoded, err := domain.DecodeArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded)
}

func TestArgsEqual_ByteExact(t *testing.T) {
	assert.True(t, domain.ArgsEqual([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, domain.ArgsEqual([]string{"a", "b"}, []string{"a", "c"}))
	assert.False(t, domain.ArgsEqual([]string{"a"}, []string{"a", "b"}))
	assert.True(t, domain.ArgsEqual(nil, []string{}))
}
