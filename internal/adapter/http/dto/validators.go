package dto

import (
	"html"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxAmountLength bounds the textual size of an amount before parsing.
const maxAmountLength = 64

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
	}
}

// validateDecimalAmount accepts plain decimal notation such as "10", "-3" or "0.0001".
// Sign is not checked here; the ledger owns that rule.
func validateDecimalAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" || len(raw) > maxAmountLength || strings.ContainsAny(raw, "eE") {
		return false
	}
	_, err := decimal.NewFromString(raw)
	return err == nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			if elem := f.Elem(); elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
