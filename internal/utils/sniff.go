package utils

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// sniffLength bounds the bytes read when classifying a file.
const sniffLength = 8000

// UnknownMimeType is reported when a file cannot be read.
const UnknownMimeType = ""

// IsBinary reports whether data looks like binary content: invalid UTF-8 or a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// SniffFile reads the head of filePath once and returns its MIME type and whether it
// looks binary. Unreadable files report UnknownMimeType and false.
func SniffFile(fileSystem afero.Fs, filePath string) (string, bool) {
	fileHandle, openError := fileSystem.Open(filePath)
	if openError != nil {
		return UnknownMimeType, false
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return UnknownMimeType, false
	}
	head := buffer[:bytesRead]
	if bytesRead == sniffLength {
		head = trimPartialRune(head)
	}
	return http.DetectContentType(head), IsBinary(head)
}

// trimPartialRune drops a multibyte rune cut off at the end of data by the read limit.
func trimPartialRune(data []byte) []byte {
	for back := 1; back < utf8.UTFMax && back <= len(data); back++ {
		start := len(data) - back
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return data
		}
		return data[:start]
	}
	return data
}
