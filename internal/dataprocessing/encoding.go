package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when the input bytes are not valid in the
// requested encoding. It is the only error that triggers the fallback.
var ErrUndecodable = errors.New("input is not valid in the requested encoding")

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
	EncodingLatin9      = "iso-8859-15"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var encodingAliases = map[string]string{
	"utf-8":        EncodingUTF8,
	"utf8":         EncodingUTF8,
	"utf-8-sig":    EncodingUTF8,
	"windows-1252": EncodingWindows1252,
	"cp1252":       EncodingWindows1252,
	"latin-1":      EncodingLatin1,
	"latin1":       EncodingLatin1,
	"iso-8859-1":   EncodingLatin1,
	"iso-8859-15":  EncodingLatin9,
	"latin-9":      EncodingLatin9,
}

var charmaps = map[string]encoding.Encoding{
	EncodingWindows1252: charmap.Windows1252,
	EncodingLatin1:      charmap.ISO8859_1,
	EncodingLatin9:      charmap.ISO8859_15,
}

// CanonicalEncoding resolves an encoding name or alias, case-insensitively.
func CanonicalEncoding(name string) (string, error) {
	canonical, ok := encodingAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unsupported encoding %q", name)
	}
	return canonical, nil
}

// Decode converts data from the named encoding to a UTF-8 string. A leading
// UTF-8 byte order mark is removed.
func Decode(data []byte, name string) (string, error) {
	canonical, err := CanonicalEncoding(name)
	if err != nil {
		return "", err
	}

	if canonical == EncodingUTF8 {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w", canonical, ErrUndecodable)
		}
		return string(data), nil
	}

	out, err := charmaps[canonical].NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", canonical, ErrUndecodable, err)
	}
	return string(out), nil
}

// DecodeWithFallback decodes data with primary and, if the bytes are not
// valid there, with fallback. It returns the text and the encoding used.
func DecodeWithFallback(data []byte, primary, fallback string) (string, string, error) {
	text, err := Decode(data, primary)
	if err == nil {
		used, _ := CanonicalEncoding(primary)
		return text, used, nil
	}
	if fallback == "" || !errors.Is(err, ErrUndecodable) {
		return "", "", err
	}

	text, fbErr := Decode(data, fallback)
	if fbErr != nil {
		return "", "", errors.Join(err, fbErr)
	}
	used, _ := CanonicalEncoding(fallback)
	return text, used, nil
}
