package serverutils

import "github.com/gofiber/fiber/v2"

type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Message: message,
		Data:    data,
	}
}

// ErrorHandlerMiddleware converts uncaught errors into a JSON envelope so
// handlers can simply return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		if _, ok := err.(ValidationError); ok {
			code = fiber.StatusBadRequest
		}

		return ctx.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
