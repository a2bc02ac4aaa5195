// Package pdfx extracts plain text from uploaded PDF documents.
//
// Extraction happens fully in-process (no external converter service).
// Failures are reported as ErrParse so the HTTP layer can map any of them
// to a client error: an unreadable file and a scanned/empty file are the
// same problem from the uploader's point of view.
package pdfx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrParse indicates the uploaded bytes could not be read as a text-bearing
// PDF.
var ErrParse = errors.New("pdf parse failed")

// ExtractText returns the plain text of a PDF given its raw bytes.
// A PDF that parses but yields no text (e.g. a pure image scan) returns an
// empty string and no error; minimum-length policy belongs to the caller.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	// The library panics on some malformed cross-reference tables; treat
	// that the same as a parse error.
	text, err := func() (s string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrParse, r)
			}
		}()
		r, err := reader.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrParse, err)
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			return "", fmt.Errorf("%w: %v", ErrParse, err)
		}
		return buf.String(), nil
	}()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}
