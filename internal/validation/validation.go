// Package validation checks request bodies against the fixed input shapes of
// the API. Every validator reports a Result instead of panicking or erroring
// out, so callers branch on Success.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Result is the outcome of a SafeParse call. Data is only meaningful when
// Success is true; Err describes why parsing failed otherwise.
type Result[T any] struct {
	Success bool
	Data    T
	Err     error
}

// Validator checks a raw JSON body against one input shape.
type Validator[T any] interface {
	SafeParse(raw []byte) Result[T]
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// parse decodes raw into a wire struct and runs its validate tags. Wire
// structs use pointer fields so "required" means present, not non-empty.
// Keys must match the json tags exactly and an explicit null is rejected.
func parse[W any](raw []byte) (*W, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty body")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, errors.New("body must be a JSON object")
	}

	var wire W
	v := reflect.ValueOf(&wire).Elem()
	for i := 0; i < v.NumField(); i++ {
		name, _, _ := strings.Cut(v.Type().Field(i).Tag.Get("json"), ",")
		value, present := fields[name]
		if !present {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, fmt.Errorf("%s: must not be null", name)
		}
		if err := json.Unmarshal(value, v.Field(i).Addr().Interface()); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}

	if err := validate.Struct(&wire); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return nil, err
	}

	return &wire, nil
}

func fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
