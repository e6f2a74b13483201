package subtitle

import (
	"errors"
	"fmt"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
)

type ParseErrorKind int

const (
	// NotFound means the path is missing or cannot be opened.
	NotFound ParseErrorKind = iota + 1
	// Malformed means the file exists but could not be decoded.
	Malformed
)

func (k ParseErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseError reports a subtitle source that could not be read.
type ParseError struct {
	Kind ParseErrorKind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("subtitle %s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("subtitle %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) ErrorType() apperror.ErrorType {
	if e.Kind == NotFound {
		return apperror.ErrSubtitleNotFound
	}
	return apperror.ErrSubtitleMalformed
}

func IsNotFound(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == NotFound
}

func IsMalformed(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == Malformed
}
