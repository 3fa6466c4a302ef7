package fsx

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// DefaultEncoding is assumed when a caller declares no encoding.
const DefaultEncoding = "utf8"

// Decode converts text declared in the named encoding into the bytes that
// should land in a file. For utf8 this is the identity; for base64/hex the
// text is decoded; for charset names the UTF-8 text is transcoded into that
// charset's byte form.
func Decode(data, encoding string) ([]byte, error) {
	switch normalizeEncoding(encoding) {
	case "", "utf8":
		return []byte(data), nil
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return decoded, nil
	case "base64url":
		decoded, err := base64.URLEncoding.DecodeString(data)
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return decoded, nil
	case "hex":
		decoded, err := hex.DecodeString(data)
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return decoded, nil
	case "latin1", "binary", "iso88591":
		encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(data))
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return encoded, nil
	case "windows1252", "cp1252":
		encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(data))
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return encoded, nil
	case "utf16le":
		encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(data))
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return encoded, nil
	case "utf16be":
		encoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(data))
		if err != nil {
			return nil, badPayload(encoding, err)
		}
		return encoded, nil
	default:
		return nil, unknownEncoding(encoding)
	}
}

// Encode converts file bytes back into the text form of the named encoding.
// It is the inverse of Decode: for any text t accepted by Decode,
// Encode(Decode(t, enc), enc) == t.
func Encode(data []byte, encoding string) (string, error) {
	switch normalizeEncoding(encoding) {
	case "", "utf8":
		return string(data), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(data), nil
	case "base64url":
		return base64.URLEncoding.EncodeToString(data), nil
	case "hex":
		return hex.EncodeToString(data), nil
	case "latin1", "binary", "iso88591":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", badPayload(encoding, err)
		}
		return string(decoded), nil
	case "windows1252", "cp1252":
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", badPayload(encoding, err)
		}
		return string(decoded), nil
	case "utf16le":
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", badPayload(encoding, err)
		}
		return string(decoded), nil
	case "utf16be":
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", badPayload(encoding, err)
		}
		return string(decoded), nil
	default:
		return "", unknownEncoding(encoding)
	}
}

// KnownEncoding reports whether name is a supported encoding.
func KnownEncoding(name string) bool {
	switch normalizeEncoding(name) {
	case "", "utf8", "base64", "base64url", "hex",
		"latin1", "binary", "iso88591",
		"windows1252", "cp1252",
		"utf16le", "utf16be":
		return true
	default:
		return false
	}
}

// normalizeEncoding lowercases the name and strips separators, so "UTF-8",
// "utf_8" and "utf8" all name the same encoding.
func normalizeEncoding(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

func unknownEncoding(name string) error {
	return errors.NewInvalidArgumentError("encoding is not supported").
		WithField("encoding").
		WithValue(name).
		WithCause(errors.ErrUnknownEncoding)
}

func badPayload(encoding string, err error) error {
	return errors.NewInvalidArgumentError("payload does not match declared encoding").
		WithField("encoding").
		WithValue(encoding).
		WithCause(err)
}
