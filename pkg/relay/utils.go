package relay

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// createResponse creates a StdResponse with the given body and error
func createResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return StdResponse[T]{
		Body:  body,
		Error: nil,
	}
}

// BadRequest marks a handler error as the caller's fault so the route
// answers 400 instead of 500.
func BadRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

func statusOf(err error) int {
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return fiber.StatusInternalServerError
}
