package handlers

import (
	"errors"
	"fmt"

	"lelang/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// validationResponse renders validator failures as field -> message.
func validationResponse(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrAuctionNotFound),
		errors.Is(err, apperrors.ErrOwnerNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrBidTooLow),
		errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrEmailTaken),
		errors.Is(err, apperrors.ErrAuctionExists),
		errors.Is(err, apperrors.ErrConcurrentUpdate):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status statusFor picks. Internal
// failures are logged and their detail is not sent to the client.
func respondError(c *fiber.Ctx, logger zerolog.Logger, message string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(message)
		return c.Status(status).JSON(fiber.Map{
			"message": message,
			"error":   "internal server error",
		})
	}

	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}
	var tooLow *apperrors.BidTooLowError
	if errors.As(err, &tooLow) {
		body["current_bid"] = tooLow.CurrentBid
	}
	return c.Status(status).JSON(body)
}
