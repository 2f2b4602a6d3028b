/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/ssgreg/logf"
)

// StringMasker masks secrets in a string.
type StringMasker interface {
	Mask(s string) string
}

// MaskingLogger is a logger that masks secrets in messages and string/error fields.
type MaskingLogger struct {
	log    FieldLogger
	masker StringMasker
}

// NewMaskingLogger wraps the logger with masking.
func NewMaskingLogger(l FieldLogger, r StringMasker) FieldLogger {
	return MaskingLogger{l, r}
}

// With returns a new logger with the given additional fields.
func (l MaskingLogger) With(fs ...Field) FieldLogger {
	return MaskingLogger{l.log.With(l.maskFields(fs)...), l.masker}
}

// Debug logs a message at "debug" level.
func (l MaskingLogger) Debug(text string, fs ...Field) {
	l.log.Debug(l.masker.Mask(text), l.maskFields(fs)...)
}

// Info logs a message at "info" level.
func (l MaskingLogger) Info(text string, fs ...Field) {
	l.log.Info(l.masker.Mask(text), l.maskFields(fs)...)
}

// Warn logs a message at "warn" level.
func (l MaskingLogger) Warn(text string, fs ...Field) {
	l.log.Warn(l.masker.Mask(text), l.maskFields(fs)...)
}

// Error logs a message at "error" level.
func (l MaskingLogger) Error(text string, fs ...Field) {
	l.log.Error(l.masker.Mask(text), l.maskFields(fs)...)
}

// Debugf logs a formatted message at "debug" level.
func (l MaskingLogger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at "info" level.
func (l MaskingLogger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at "warn" level.
func (l MaskingLogger) Warnf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at "error" level.
func (l MaskingLogger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// AtLevel calls the given fn if logging a message at the specified level
// is enabled, passing a LogFunc with the bound level.
func (l MaskingLogger) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.log.AtLevel(level, func(logFunc LogFunc) {
		fn(func(msg string, fs ...Field) {
			logFunc(l.masker.Mask(msg), l.maskFields(fs)...)
		})
	})
}

func (l MaskingLogger) maskFields(fields []Field) []Field {
	var newFields []Field
	replace := func(i int, f Field) {
		if newFields == nil {
			newFields = make([]Field, len(fields))
			copy(newFields, fields)
		}
		newFields[i] = f
	}

	for i := range fields {
		field := fields[i]
		switch field.Type {
		case logf.FieldTypeBytesToString:
			s := string(field.Bytes)
			if masked := l.masker.Mask(s); masked != s {
				replace(i, String(field.Key, masked))
			}
		case logf.FieldTypeBytes, logf.FieldTypeRawBytes:
			if field.Bytes != nil {
				s := string(field.Bytes)
				if masked := l.masker.Mask(s); masked != s {
					replace(i, logf.ConstBytes(field.Key, []byte(masked)))
				}
			}
		case logf.FieldTypeError:
			if err, ok := field.Any.(error); ok && err != nil {
				s := err.Error()
				if masked := l.masker.Mask(s); masked != s {
					replace(i, NamedError(field.Key, newMaskedError(err, l.masker, masked)))
				}
			}
		}
	}

	if newFields == nil {
		return fields
	}
	return newFields
}

func newMaskedError(err error, r StringMasker, masked string) error {
	if _, ok := err.(fmt.Formatter); ok {
		return maskedError{s: masked, verboseS: r.Mask(fmt.Sprintf("%+v", err))}
	}
	return errors.New(masked)
}

// maskedError keeps the verbose ("%+v") representation masked as well.
type maskedError struct {
	s        string
	verboseS string
}

func (e maskedError) Error() string {
	return e.s
}

func (e maskedError) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, e.verboseS)
}
