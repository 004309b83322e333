package bulk

import (
	"errors"
	"fmt"
	"strings"
)

// UploadValidationError marks problems reported synchronously to the
// uploader; the queue is never touched when one is returned.
type UploadValidationError interface {
	error
	uploadValidation()
}

type EmptyFileError struct{}

func (e *EmptyFileError) Error() string     { return "CSV file is empty" }
func (e *EmptyFileError) uploadValidation() {}

type MissingFieldsError struct {
	Format        Format
	MissingFields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("CSV is missing required fields: %s", strings.Join(e.MissingFields, ", "))
}
func (e *MissingFieldsError) uploadValidation() {}

type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown CSV format %q", e.Format)
}
func (e *UnknownFormatError) uploadValidation() {}

// MalformedCSVError is a file the CSV reader could not get through.
type MalformedCSVError struct {
	Err error
}

func (e *MalformedCSVError) Error() string     { return "malformed CSV: " + e.Err.Error() }
func (e *MalformedCSVError) Unwrap() error     { return e.Err }
func (e *MalformedCSVError) uploadValidation() {}

type BadExtensionError struct {
	Filename string
}

func (e *BadExtensionError) Error() string     { return "Only CSV files are allowed" }
func (e *BadExtensionError) uploadValidation() {}

// IsUploadValidation reports whether err, or anything it wraps, is an
// UploadValidationError.
func IsUploadValidation(err error) bool {
	var uv UploadValidationError
	return errors.As(err, &uv)
}

// MappingError is a row that lacks a hard-required business field after
// mapping and inference.
type MappingError struct {
	Fields []string
	Row    Row
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// RawDetails is what the status endpoint shows next to the message.
func (e *MappingError) RawDetails() any {
	return map[string]any{"missingFields": e.Fields}
}
