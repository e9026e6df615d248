package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidationError carries every failing field with its messages.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func formatFieldName(s string) string {
	// salary_local -> Salary Local
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts validator errors into a *ValidationError keyed
// by json field name. Anything else becomes ErrInvalidInput.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return New(
			CodeInvalidInput,
			"Invalid input",
			http.StatusBadRequest,
		)
	}

	fields := make(map[string][]string, len(errs))
	for _, e := range errs {
		name := e.Field()
		fields[name] = append(fields[name], fieldMessage(e))
	}

	first := errs[0]
	var summary *AppError
	switch first.Tag() {
	case "required":
		summary = RequiredField(formatFieldName(first.Field()))
	default:
		summary = InvalidField(formatFieldName(first.Field()))
	}

	return &ValidationError{
		Message: summary.Message,
		Fields:  fields,
	}
}

// MapBindError classifies an error returned by gin's ShouldBindJSON.
// Malformed JSON is a 400; values of the wrong type or shape are reported
// as field-level validation failures.
func MapBindError(err error) error {
	var mapped *ValidationError
	if errors.As(err, &mapped) {
		return mapped
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return MapValidationError(err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Wrap(err, CodeInvalidInput, "Malformed JSON body", http.StatusBadRequest)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{
			Message: InvalidField(formatFieldName(typeErr.Field)).Message,
			Fields: map[string][]string{
				typeErr.Field: {typeErr.Field + " must be of type " + typeErr.Type.String()},
			},
		}
	}

	return &ValidationError{
		Message: "The provided input is invalid",
		Fields: map[string][]string{
			"body": {err.Error()},
		},
	}
}

// NotNullFields reports fields that were present in the body as null. It
// returns nil when fields is empty.
func NotNullFields(fields []string) *ValidationError {
	if len(fields) == 0 {
		return nil
	}

	out := make(map[string][]string, len(fields))
	for _, name := range fields {
		out[name] = append(out[name], name+" is a required field")
	}
	return &ValidationError{
		Message: RequiredField(formatFieldName(fields[0])).Message,
		Fields:  out,
	}
}

// Merge adds the field messages of other to e.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string, len(other.Fields))
	}
	for name, msgs := range other.Fields {
		e.Fields[name] = append(e.Fields[name], msgs...)
	}
	return e
}

func fieldMessage(e validator.FieldError) string {
	if translator != nil {
		return e.Translate(translator)
	}
	if e.Tag() == "required" {
		return RequiredField(e.Field()).Message
	}
	return InvalidField(e.Field()).Message
}

// FieldNames returns the sorted keys of a field error map.
func FieldNames(fields map[string][]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
