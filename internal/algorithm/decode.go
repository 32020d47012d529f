package algorithm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their wire name so messages match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode parses input into req, applies `default` tags and checks `validate` tags.
// The returned error is one of EmptyInputError, ParseError or MissingFieldError.
func Decode(algorithmName string, input []byte, req interface{}) error {
	if len(input) == 0 {
		return &EmptyInputError{Algorithm: algorithmName}
	}

	if err := json.Unmarshal(input, req); err != nil {
		return decodeError(input, err)
	}

	if err := defaults.Set(req); err != nil {
		return &ParseError{Message: err.Error(), Err: err}
	}

	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	return nil
}

// CeilPrediction rounds a model prediction up to the nearest integer.
func CeilPrediction(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, Computationf("prediction is not a finite number (%v)", v)
	}
	c := math.Ceil(v)
	if c < math.MinInt || c >= -math.MinInt {
		return 0, Computationf("prediction %v is out of integer range", v)
	}
	return int(c), nil
}

func decodeError(input []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Message: withPosition(input, syntaxErr.Error(), syntaxErr.Offset), Err: err}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Field is a dotted path that may include embedded struct names; keep the leaf.
		field := typeErr.Field
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if field == "" {
			field = "request"
		}
		msg := fmt.Sprintf("%s must be %s, got %s", field, describeKind(typeErr.Type), typeErr.Value)
		return &ParseError{Message: withPosition(input, msg, typeErr.Offset), Err: err}
	}

	return &ParseError{Message: err.Error(), Err: err}
}

// withPosition appends a "line L column C (char O)" description for the byte offset.
func withPosition(input []byte, msg string, offset int64) string {
	char := offset - 1
	if char < 0 {
		char = 0
	}
	if char > int64(len(input)) {
		char = int64(len(input))
	}
	before := input[:char]
	line := bytes.Count(before, []byte("\n")) + 1
	column := int(char) + 1
	if i := bytes.LastIndexByte(before, '\n'); i >= 0 {
		column = int(char) - i
	}
	return fmt.Sprintf("%s: line %d column %d (char %d)", msg, line, column, char)
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Ptr:
		return describeKind(t.Elem())
	default:
		return t.String()
	}
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ParseError{Message: err.Error(), Err: err}
	}

	// Fields are reported in declaration order; only the first is surfaced.
	fe := validationErrors[0]
	switch fe.Tag() {
	case "required", "required_without":
		return &MissingFieldError{Field: fe.Field()}
	default:
		return &ParseError{Message: getErrorMessage(fe), Err: err}
	}
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
