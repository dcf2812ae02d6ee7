package utils

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"print(1+1)",
		"def solve():\n\treturn 42\n",
		"console.log(\"héllo wörld\")",
		"多字节文本 with mixed content",
	}

	for _, input := range inputs {
		decoded, err := DecodeBase64(EncodeBase64(input))
		require.NoError(t, err)
		require.Equal(t, input, decoded)
	}
}

func TestDecodeBase64RejectsMalformedInput(t *testing.T) {
	_, err := DecodeBase64("not-valid-base64!!!")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeBase64KnownValue(t *testing.T) {
	decoded, err := DecodeBase64("cHJpbnQoMSsxKQ==")
	require.NoError(t, err)
	require.Equal(t, "print(1+1)", decoded)
}

func TestDecodeBase64OrPlaceholder(t *testing.T) {
	require.Equal(t, "print(1+1)", DecodeBase64OrPlaceholder(zerolog.Nop(), "cHJpbnQoMSsxKQ=="))
	require.Equal(t, DecodePlaceholder, DecodeBase64OrPlaceholder(zerolog.Nop(), "%%%"))
}
