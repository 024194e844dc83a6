package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	k := Key{Entry: "iter/pulse/134173", IDS: "equilibrium", Occurrence: 2}
	assert.Equal(t, "iter/pulse/134173/equilibrium/2", k.String())

	back, err := ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, back)
}

func TestParseKeyErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"nothing",
		"ids/0",
		"e/ids/x",
		"e/ids/-1",
		"/ids/0",
		"e//0",
	} {
		_, err := ParseKey(s)
		assert.ErrorIs(t, err, ErrInvalidKey, "%q", s)
	}
}
