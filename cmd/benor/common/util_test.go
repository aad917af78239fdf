package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntList(t *testing.T) {
	l, err := ParseIntList("0, 1,,1")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 1}, l)

	l, err = ParseIntList("")
	require.NoError(t, err)
	require.Nil(t, l)

	_, err = ParseIntList("0,b")
	require.Error(t, err)
}

func TestDefaultEncodes(t *testing.T) {
	v := map[string]int{"k": 1}

	var b bytes.Buffer
	require.NoError(t, DefaultEncodes["json"](v, &b))
	require.Equal(t, "{\"k\":1}\n", b.String())

	b.Reset()
	require.NoError(t, DefaultEncodes["yaml"](v, &b))
	require.Equal(t, "k: 1\n", b.String())
}
