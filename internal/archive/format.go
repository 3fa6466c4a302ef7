package archive

import (
	"github.com/mholt/archiver/v3"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// Format identifies a supported archive container format. The value doubles
// as the file extension appended to logical archive names.
type Format string

// Supported archive formats.
const (
	FormatTarGz Format = "tar.gz"
	FormatZip   Format = "zip"
)

// ParseFormat validates a format string from configuration or user input.
// Only the exact values "tar.gz" and "zip" are accepted; anything else
// returns an UnsupportedFormatError.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTarGz:
		return FormatTarGz, nil
	case FormatZip:
		return FormatZip, nil
	default:
		return "", errors.NewUnsupportedFormatError(s)
	}
}

// Formats returns the list of accepted format strings, in display order.
func Formats() []string {
	return []string{string(FormatTarGz), string(FormatZip)}
}

// Extension returns the file extension for the format, without a leading dot.
func (f Format) Extension() string {
	return string(f)
}

// String returns the format as its configuration string.
func (f Format) String() string {
	return string(f)
}

// newWriter constructs a streaming archive writer for the format. The writer
// still needs Create called with an output stream before entries can be
// written.
func (f Format) newWriter() (archiver.Writer, error) {
	switch f {
	case FormatTarGz:
		return archiver.NewTarGz(), nil
	case FormatZip:
		return archiver.NewZip(), nil
	default:
		return nil, errors.NewUnsupportedFormatError(string(f))
	}
}
