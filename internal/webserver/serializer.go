package webserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JsoniterSerializer replaces echo's default JSON codec with json-iterator.
type JsoniterSerializer struct{}

func (JsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("malformed JSON body: %v", err)).SetInternal(err)
	}
	return nil
}

// PayloadValidator binds go-playground/validator as echo's Validator.
type PayloadValidator struct {
	validate *validator.Validate
}

func NewPayloadValidator() *PayloadValidator {
	return &PayloadValidator{validate: validator.New()}
}

// Validate returns the raw validator error so handlers can map field errors
// into the response envelope.
func (v *PayloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
