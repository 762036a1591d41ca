package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-search-service/internal/transport/httpserver/dto"
)

// Recover turns a handler panic into a 500 response carrying the request id,
// so a client report can be matched to the logged stack.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			rid := requestID(c)
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", rid),
				zap.ByteString("stack", debug.Stack()),
			}
			if perr, ok := r.(error); ok {
				fields = append(fields, zap.Error(perr))
			} else {
				fields = append(fields, zap.String("panic", fmt.Sprint(r)))
			}
			if q := c.Query("q"); q != "" {
				fields = append(fields, zap.String("query", q))
			}
			logger.Error("panic recovered", fields...)

			err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:     "internal server error",
				Code:      "PANIC",
				RequestID: rid,
			})
		}()

		return c.Next()
	}
}

// requestID returns the id set by the requestid middleware, or "".
func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals("requestid").(string)
	return rid
}
