// Package errors renders ledger and document errors for different consumers:
// plain text for the CLI and JSON for the web API.
//
// Error types stay in their own packages (ledger, rates, undo). This package
// only deals with presentation. It picks details off errors through small
// accessor interfaces, so new error types only need to implement them.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/undo"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// Category is the broad class of an error.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryNotFound     Category = "not_found"
	CategoryInvalidInput Category = "invalid_input"
	CategoryInternal     Category = "internal"
)

// CategoryOf classifies err.
func CategoryOf(err error) Category {
	switch {
	case stderrors.Is(err, ledger.ErrValidation):
		return CategoryValidation
	case stderrors.Is(err, ledger.ErrInvalidInput):
		return CategoryInvalidInput
	case stderrors.Is(err, ledger.ErrNotFound),
		stderrors.Is(err, undo.ErrNothingToUndo),
		stderrors.Is(err, undo.ErrNothingToRedo):
		return CategoryNotFound
	}
	return CategoryInternal
}

// StatusCode maps err to the HTTP status the web API answers with.
func StatusCode(err error) int {
	switch CategoryOf(err) {
	case CategoryValidation:
		return http.StatusUnprocessableEntity
	case CategoryInvalidInput:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	dateFormat string
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithDateFormat sets the layout used for dates in messages.
func WithDateFormat(layout string) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.dateFormat = layout
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{dateFormat: "2006-01-02"}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Dated errors are prefixed with their date,
// input errors get a hint about the offending field.
func (tf *TextFormatter) Format(err error) string {
	var buf bytes.Buffer

	if e, ok := asDated(err); ok && !e.GetDate().IsZero() {
		buf.WriteString(e.GetDate().Format(tf.dateFormat))
		buf.WriteString(": ")
	}
	buf.WriteString(err.Error())

	if e, ok := asField(err); ok {
		fmt.Fprintf(&buf, "\n\n   check the %s field", e.GetField())
	}
	return buf.String()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = tf.Format(err)
	}
	return strings.Join(parts, "\n\n")
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Category Category       `json:"category"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.ToJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.ToJSON(err))
	}
	return result
}

// ToJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:     typeName(err),
		Category: CategoryOf(err),
		Message:  err.Error(),
		Details:  make(map[string]any),
	}

	if e, ok := asDated(err); ok && !e.GetDate().IsZero() {
		errJSON.Details["date"] = e.GetDate().String()
	}
	if e, ok := asField(err); ok {
		errJSON.Details["field"] = e.GetField()
	}
	var named interface{ GetName() string }
	if stderrors.As(err, &named) {
		errJSON.Details["name"] = named.GetName()
	}
	var missing *ledger.NotFoundError
	if stderrors.As(err, &missing) {
		errJSON.Details["kind"] = missing.Kind.String()
		errJSON.Details["id"] = missing.ID
	}
	var imbalanced *ledger.ImbalancedError
	if stderrors.As(err, &imbalanced) {
		errJSON.Details["imbalance"] = imbalanced.Imbalance.String()
	}
	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}

type dated interface{ GetDate() date.Date }

type field interface{ GetField() string }

func asDated(err error) (dated, bool) {
	var e dated
	ok := stderrors.As(err, &e)
	return e, ok
}

func asField(err error) (field, bool) {
	var e field
	ok := stderrors.As(err, &e)
	return e, ok
}

// typeName returns the bare type name of err, looking through fmt wrapping:
// "ImbalancedError".
func typeName(err error) string {
	name := fmt.Sprintf("%T", err)
	for strings.HasPrefix(name, "*fmt.") {
		inner := stderrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
		name = fmt.Sprintf("%T", err)
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
