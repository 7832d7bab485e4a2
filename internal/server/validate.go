package server

import (
	"bytes"
	"errors"
	"fmt"
)

// Upload validation failures. All of them map to HTTP 400.
var (
	ErrEmptyUpload  = errors.New("uploaded document is empty")
	ErrUploadSmall  = errors.New("uploaded document is too small to be a PDF")
	ErrNotPDF       = errors.New("uploaded document is not a PDF")
	ErrEncryptedPDF = errors.New("uploaded document is encrypted")
)

// A syntactically plausible PDF needs at least a header, one object, a
// trailer and the EOF marker.
const minPDFBytes = 100

var (
	pdfSignature = []byte("%PDF")
	encryptMark  = []byte("/Encrypt")
)

// ValidatePDF runs the byte-level checks applied to every uploaded
// document before any processing starts. It rejects empty and truncated
// payloads, non-PDF content and encrypted files; it does not parse the
// document structure.
func ValidatePDF(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyUpload
	}
	if len(data) < minPDFBytes {
		return fmt.Errorf("%w: %d bytes", ErrUploadSmall, len(data))
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return ErrNotPDF
	}
	if bytes.Contains(data, encryptMark) {
		return ErrEncryptedPDF
	}
	return nil
}
