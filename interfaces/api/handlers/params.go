package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id must be a UUID", services.ErrInvalidParameter)
	}
	return id, nil
}

// queryUUID reads the first non-empty key as a UUID; nil when all are absent
func queryUUID(c *fiber.Ctx, keys ...string) (*uuid.UUID, error) {
	for _, key := range keys {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a UUID", services.ErrInvalidParameter, key)
		}
		return &id, nil
	}
	return nil, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", services.ErrInvalidParameter, key)
	}
	return &v, nil
}

// queryFloat defaults to 0 when the key is absent
func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", services.ErrInvalidParameter, key)
	}
	return v, nil
}

func pageParams(c *fiber.Ctx) (int, int) {
	return dto.NormalizePage(c.QueryInt("page", 1), c.QueryInt("limit", dto.DefaultPageLimit))
}

// serviceError maps domain errors onto HTTP statuses
func serviceError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInputNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, services.ErrInvalidParameter), errors.Is(err, services.ErrValidation):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, message, err)
	case errors.Is(err, services.ErrIngestInProgress):
		return utils.ErrorResponse(c, fiber.StatusConflict, message, err)
	}

	logger.Error(logger.CategoryAPI, "request_failed", message, err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

func badRequest(c *fiber.Ctx, err error) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request parameters", err)
}
