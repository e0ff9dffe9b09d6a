package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVerificationFailed is returned when the anti-abuse verification rejects
// a submission (or the verification call itself fails, which is treated the
// same way).
var ErrVerificationFailed = errors.New("recaptcha verification failed")

// ErrUnsupportedFileType is returned when the resume extension is outside
// the allow-list.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// MissingFieldsError reports the required form fields that were empty or
// absent. Fields are in form order; "resume" is appended last when the
// upload itself is missing.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// FileTooLargeError reports an upload exceeding the configured ceiling
type FileTooLargeError struct {
	LimitMB int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large (>%dMB)", e.LimitMB)
}
