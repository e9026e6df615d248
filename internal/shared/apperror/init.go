package apperror

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

var (
	initOnce   sync.Once
	translator ut.Translator
)

// Init configures gin's validator engine: json field names in errors, the
// notblank rule, decimal support for numeric rules and English messages.
// Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			// Mengambil nama dari tag json (contoh: `json:"salary_local"`)
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", validators.NotBlank)

		// min/max on decimal fields compare the float value.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})

		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			return
		}
		_ = v.RegisterTranslation("notblank", trans,
			func(ut ut.Translator) error {
				return ut.Add("notblank", "{0} must not be blank", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("notblank", fe.Field())
				return t
			},
		)
		translator = trans
	})
}
