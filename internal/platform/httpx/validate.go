package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every failing field as a validation error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// DecodeAndValidate decodes a JSON body into target and validates it.
func DecodeAndValidate(r *http.Request, target any) error {
	if err := DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrValidation, err)
	}
	return Validate(target)
}

// QueryInt reads an integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrValidation, name)
	}
	return v, nil
}

// MaxPageSize bounds the size query parameter of paged listings.
const MaxPageSize = 500

// PageParams reads page and size; a zero size means the caller's default.
func PageParams(r *http.Request) (page, size int, err error) {
	page, err = QueryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err = QueryInt(r, "size", 0)
	if err != nil {
		return 0, 0, err
	}
	if size < 0 || size > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: size must be between 1 and %d", ErrValidation, MaxPageSize)
	}
	return page, size, nil
}
