package middleware

import (
	"errors"
	"reflect"
	"strings"

	"shrnq/dtos/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Where the validators leave the parsed request for the handler.
const (
	LocalsBody  = "body"
	LocalsQuery = "query"
)

var Validate *validator.Validate

// InitValidator initializes validator and custom rules
func InitValidator() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the name the client sent them under.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	Validate.RegisterValidation("https", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "https://")
	})
}

func translateValidationErrors(err validator.ValidationErrors) map[string]string {
	errorsMap := make(map[string]string)
	for _, e := range err {
		field := e.Field()
		tag := e.Tag()
		switch tag {
		case "https":
			errorsMap[field] = "URL must start with https://"
		case "url":
			errorsMap[field] = "Invalid url"
		case "required":
			errorsMap[field] = field + " is required"
		case "oneof":
			errorsMap[field] = field + " must be one of: " + e.Param()
		case "max":
			errorsMap[field] = field + " must be at most " + e.Param() + " characters"
		default:
			errorsMap[field] = field + " is invalid"
		}
	}
	return errorsMap
}

// ValidateBody is Fiber middleware that validates request body
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body T

		// Parse form or JSON into struct
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  "Invalid request body",
			})
		}

		// Validate struct
		if err := Validate.Struct(&body); err != nil {
			var errs validator.ValidationErrors
			if errors.As(err, &errs) {
				return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
					Status: response.StatusError,
					Error:  "Invalid submission",
					Errors: translateValidationErrors(errs),
				})
			}
			// fallback for unexpected errors
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  err.Error(),
			})
		}

		// Store validated body in context for controller
		c.Locals(LocalsBody, &body)
		return c.Next()
	}
}

// ValidateQuery is ValidateBody for query string parameters.
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var query T
		if err := c.QueryParser(&query); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  "Invalid query",
			})
		}
		if err := Validate.Struct(&query); err != nil {
			var errs validator.ValidationErrors
			if errors.As(err, &errs) {
				return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
					Status: response.StatusError,
					Error:  "Invalid submission",
					Errors: translateValidationErrors(errs),
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  err.Error(),
			})
		}
		c.Locals(LocalsQuery, &query)
		return c.Next()
	}
}

// Body returns what ValidateBody[T] stored for this request.
func Body[T any](c *fiber.Ctx) (*T, bool) {
	body, ok := c.Locals(LocalsBody).(*T)
	return body, ok
}

// Query returns what ValidateQuery[T] stored for this request.
func Query[T any](c *fiber.Ctx) (*T, bool) {
	query, ok := c.Locals(LocalsQuery).(*T)
	return query, ok
}
