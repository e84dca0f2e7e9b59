package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/endpoint-nf-store/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom registrations happen in
// init before the first call to Struct.
var v = validator.New()

func init() {
	// A KeyHash is only "present" when it has at least one byte; the stock
	// required check accepts empty non-nil slices.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if kh, ok := field.Interface().(domain.KeyHash); ok && len(kh) > 0 {
			return []byte(kh)
		}
		return nil
	}, domain.KeyHash{})
}

// Struct validates s using its validate tags. Failures wrap domain.ErrBadRequest.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrBadRequest)
	}
	return nil
}
