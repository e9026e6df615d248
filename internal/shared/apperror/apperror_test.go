package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name   string           `json:"name" binding:"required,notblank"`
	Amount *decimal.Decimal `json:"amount" binding:"required,min=0"`
}

func validate(t *testing.T, body string) error {
	t.Helper()
	Init()

	var req sampleRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return binding.Validator.ValidateStruct(&req)
}

func TestToHTTP(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		got := ToHTTP(ErrNotFound)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, CodeNotFound, got.Code)
	})

	t.Run("wrapped app error", func(t *testing.T) {
		err := Wrap(io.EOF, CodeInvalidInput, "Malformed JSON body", http.StatusBadRequest)
		got := ToHTTP(errors.Join(errors.New("outer"), err))

		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("validation error", func(t *testing.T) {
		got := ToHTTP(&ValidationError{Message: "Name is required", Fields: map[string][]string{"name": {"x"}}})

		assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
		assert.Equal(t, CodeValidationFailed, got.Code)
		assert.Equal(t, map[string][]string{"name": {"x"}}, got.Details)
	})

	t.Run("unknown error hides details", func(t *testing.T) {
		got := ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, ErrInternal.Message, got.Message)
	})
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternalError, "x", http.StatusInternalServerError))
}

func TestMapValidationError(t *testing.T) {
	t.Run("json field names and messages", func(t *testing.T) {
		err := MapValidationError(validate(t, `{"amount":-1}`))

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "Name is required", vErr.Message)
		assert.Equal(t, []string{"amount", "name"}, FieldNames(vErr.Fields))
		assert.Equal(t, "name is a required field", vErr.Fields["name"][0])
		assert.Contains(t, vErr.Fields["amount"][0], "amount")
	})

	t.Run("zero decimal passes required", func(t *testing.T) {
		assert.NoError(t, validate(t, `{"name":"Ada","amount":0}`))
	})

	t.Run("blank string", func(t *testing.T) {
		err := MapValidationError(validate(t, `{"name":"  ","amount":1}`))

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, []string{"name must not be blank"}, vErr.Fields["name"])
	})

	t.Run("non validator error", func(t *testing.T) {
		got := ToHTTP(MapValidationError(errors.New("x")))
		assert.Equal(t, http.StatusBadRequest, got.Status)
	})
}

func TestMapBindError(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		var v map[string]any
		err := json.Unmarshal([]byte(`{"a":`), &v)

		got := ToHTTP(MapBindError(err))
		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, CodeInvalidInput, got.Code)
	})

	t.Run("type error", func(t *testing.T) {
		var v struct {
			Name string `json:"name"`
		}
		err := json.NewDecoder(strings.NewReader(`{"name":1}`)).Decode(&v)

		got := ToHTTP(MapBindError(err))
		assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
		assert.Contains(t, got.Details, "name")
	})
}

func TestFormatFieldName(t *testing.T) {
	assert.Equal(t, "Salary Local", formatFieldName("salary_local"))
}

func TestNotNullFields(t *testing.T) {
	assert.Nil(t, NotNullFields(nil))

	err := NotNullFields([]string{"salary_local", "commission"})
	require.NotNil(t, err)
	assert.Equal(t, "Salary Local is required", err.Message)
	assert.Equal(t, []string{"commission is a required field"}, err.Fields["commission"])

	mapped := MapBindError(err)
	assert.Same(t, err, mapped)

	merged := (&ValidationError{Fields: map[string][]string{"commission": {"commission must be 0 or greater"}}}).Merge(err)
	assert.Len(t, merged.Fields["commission"], 2)
	assert.Contains(t, merged.Fields, "salary_local")
}
