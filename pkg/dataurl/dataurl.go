// Package dataurl validates inline images (RFC 2397 data URI) embedded in json documents.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformed   = errors.New("malformed data uri")
	ErrUnsupported = errors.New("unsupported image type")
	ErrTooLarge    = errors.New("image too large")
)

// DefaultAllowedTypes is the image types accepted by the upload form.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Image is a decoded data uri header. The payload is not kept.
type Image struct {
	MediaType string
	Size      int
}

// Parse parses "data:<media type>;base64,<payload>" and decodes the payload to know its real size.
func Parse(uri string) (img Image, err error) {
	mediaType, payload, err := splitHeader(uri)
	if err != nil {
		return
	}

	size, err := decodedSize(payload)
	if err != nil {
		return
	}

	img = Image{
		MediaType: mediaType,
		Size:      size,
	}
	return
}

// EstimateSize returns the decoded size of base64 payload from its length and padding only.
// It equals the real size for a well-formed payload.
func EstimateSize(payload string) int {
	n := base64.StdEncoding.DecodedLen(len(payload))
	n -= len(payload) - len(strings.TrimRight(payload, "="))
	if n < 0 {
		return 0
	}

	return n
}

// Validate checks the uri is an image of allowed type not bigger than maxBytes.
// Oversized payload is rejected before it is decoded.
func Validate(uri string, allowedTypes []string, maxBytes int) error {
	mediaType, payload, err := splitHeader(uri)
	if err != nil {
		return err
	}

	allowed := false
	for _, t := range allowedTypes {
		if mediaType == t {
			allowed = true
			break
		}
	}

	if !allowed {
		return fmt.Errorf("%w: %s", ErrUnsupported, mediaType)
	}

	if maxBytes > 0 && EstimateSize(payload) > maxBytes {
		return fmt.Errorf("%w: %d bytes, max %d bytes", ErrTooLarge, EstimateSize(payload), maxBytes)
	}

	size, err := decodedSize(payload)
	if err != nil {
		return err
	}

	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes, max %d bytes", ErrTooLarge, size, maxBytes)
	}

	return nil
}

// Shorten keeps the header of data uri and replaces the payload with its length, for logging.
// Other strings are returned as is.
func Shorten(s string) string {
	const prefix = "data:"
	if !strings.HasPrefix(s, prefix) {
		return s
	}

	header, payload, found := strings.Cut(s, ",")
	if !found {
		return s
	}

	return fmt.Sprintf("%s,<%d chars>", header, len(payload))
}

func splitHeader(uri string) (mediaType, payload string, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		err = fmt.Errorf("%w: missing data scheme", ErrMalformed)
		return
	}

	header, payload, found := strings.Cut(uri[len(prefix):], ",")
	if !found {
		err = fmt.Errorf("%w: missing comma separator", ErrMalformed)
		return
	}

	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		err = fmt.Errorf("%w: only base64 encoding is supported", ErrMalformed)
		return
	}

	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return
}

func decodedSize(payload string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	return len(decoded), nil
}
