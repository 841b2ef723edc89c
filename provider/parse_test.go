package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 7, *ParseInt(" 7 "))
	assert.Nil(t, ParseInt("-"))
	assert.Nil(t, ParseInt(""))
	assert.Nil(t, ParseInt("PU"))
}

func TestParseFurlongs(t *testing.T) {
	assert.Equal(t, 8.0, ParseFurlongs("8f"))
	assert.Equal(t, 8.5, ParseFurlongs("8.5F"))
	assert.Equal(t, 10.0, ParseFurlongs("10"))
	assert.Equal(t, 0.0, ParseFurlongs("1m2f"))
	assert.Equal(t, 0.0, ParseFurlongs(""))
	assert.Equal(t, 0.0, ParseFurlongs("Infinity"))
	assert.Equal(t, 0.0, ParseFurlongs("-infinityf"))
	assert.Equal(t, 0.0, ParseFurlongs("NaN"))
	assert.Equal(t, 0.0, ParseFurlongs("-3f"))
}

func TestParsePrize(t *testing.T) {
	p := ParsePrize("£3,245.50")
	require.NotNil(t, p)
	assert.InDelta(t, 3245.5, *p, 1e-9)
	assert.Nil(t, ParsePrize("-"))
}

func TestParseTime(t *testing.T) {
	v := ParseTime("1:12.34")
	require.NotNil(t, v)
	assert.InDelta(t, 72.34, *v, 1e-9)
	v = ParseTime("59.9s")
	require.NotNil(t, v)
	assert.InDelta(t, 59.9, *v, 1e-9)
	assert.Nil(t, ParseTime("-"))
	assert.Nil(t, ParseTime("x:12"))
}
