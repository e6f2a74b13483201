package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrSubtitleNotFound
	ErrSubtitleMalformed
	ErrNoPairsFound
	ErrValidation
	ErrConfig
	ErrStore
	ErrTokenizer
)

// Error is the typed error carried across package boundaries.
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func New(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func Newf(errorType ErrorType, format string, args ...any) *Error {
	return New(errorType, fmt.Sprintf(format, args...))
}

func Wrap(err error, errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   err,
	}
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrSubtitleNotFound:
		return "SubtitleNotFound"
	case ErrSubtitleMalformed:
		return "SubtitleMalformed"
	case ErrNoPairsFound:
		return "NoPairsFound"
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	case ErrStore:
		return "Store"
	case ErrTokenizer:
		return "Tokenizer"
	default:
		return "Unknown"
	}
}

// Classifier lets errors outside this package declare their ErrorType.
type Classifier interface {
	ErrorType() ErrorType
}

func (e *Error) ErrorType() ErrorType {
	return e.Type
}

// Is reports whether the first classified error in err's chain has the given type.
func Is(err error, errorType ErrorType) bool {
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.ErrorType() == errorType
	}
	return false
}

// TypeOf returns the type of the first classified error in err's chain.
func TypeOf(err error) ErrorType {
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.ErrorType()
	}
	return ErrUnknown
}

type Handler interface {
	Handle(err error) bool
	Advice(err error) string
}

type DefaultHandler struct{}

func NewDefaultHandler() Handler {
	return &DefaultHandler{}
}

func (h *DefaultHandler) Handle(err error) bool {
	var classifier Classifier
	if !errors.As(err, &classifier) {
		log.Error("Unknown error: %v", err)
		return false
	}

	log.Error("Error detail: %v | advice: %s", err, h.Advice(err))
	return true
}

func (h *DefaultHandler) Advice(err error) string {
	switch TypeOf(err) {
	case ErrSubtitleNotFound:
		return "Check that the subtitle path is correct and readable"
	case ErrSubtitleMalformed:
		return "The subtitle file could not be decoded; only .srt, .ass and .ssa are supported"
	case ErrNoPairsFound:
		return "No video matched a subtitle; check episode numbers in the file names and the folder paths"
	case ErrValidation:
		return "Check the command arguments and settings values"
	case ErrConfig:
		return "Check the MINER_* environment variables and the settings file"
	case ErrStore:
		return "Check that the database path is writable and not locked by another process"
	case ErrTokenizer:
		return "The morphological analyzer failed to initialise"
	default:
		return "Review the error detail above"
	}
}

// SafeExecute runs fn and converts a panic into an ErrUnknown error.
func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Newf(ErrUnknown, "runtime error: %v", r)
		}
	}()

	return fn()
}
