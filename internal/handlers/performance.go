package handlers

import (
	"errors"

	"adsettle/internal/repositories"
	"adsettle/internal/services/settlement"
	"adsettle/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PerformanceHandler struct {
	settlementService settlement.Service
}

func NewPerformanceHandler(settlementService settlement.Service) *PerformanceHandler {
	return &PerformanceHandler{settlementService: settlementService}
}

// RecordPerformance receives cumulative day totals from the telemetry
// collaborator.
func (h *PerformanceHandler) RecordPerformance(c *fiber.Ctx) error {
	var input struct {
		AdID        uint `json:"ad_id"`
		ChannelID   uint `json:"channel_id"`
		Impressions int  `json:"impressions"`
		Clicks      int  `json:"clicks"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	err := h.settlementService.RecordPerformance(c.Context(),
		input.AdID, input.ChannelID, input.Impressions, input.Clicks)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAdNotFound),
			errors.Is(err, repositories.ErrChannelNotFound):
			return utils.NotFound(c, err.Error())
		case errors.Is(err, settlement.ErrInvalidCounters),
			errors.Is(err, settlement.ErrClicksExceedViews),
			errors.Is(err, settlement.ErrCounterRegression):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to record performance")
	}
	return utils.Success(c, fiber.Map{"message": "performance recorded"})
}
