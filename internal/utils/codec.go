package utils

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrDecode indicates a payload was not valid base64.
var ErrDecode = errors.New("malformed base64 payload")

// DecodePlaceholder is substituted for problem descriptions that fail to decode.
// Decoding is best-effort at the display boundary; the failure is still logged.
const DecodePlaceholder = "Error decoding description."

// EncodeBase64 converts UTF-8 source text into the base64 wire format used by
// problem storage and the judge API.
func EncodeBase64(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeBase64 converts a base64 payload back into text.
func DecodeBase64(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(decoded), nil
}

// DecodeBase64OrPlaceholder decodes a payload, substituting a fixed placeholder
// when the payload is malformed. The error is logged so the failure stays
// visible at the service boundary.
func DecodeBase64OrPlaceholder(logger zerolog.Logger, encoded string) string {
	decoded, err := DecodeBase64(encoded)
	if err != nil {
		logger.Error().Err(err).Msg("failed to decode base64 payload")
		return DecodePlaceholder
	}
	return decoded
}
