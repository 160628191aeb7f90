package handlers

import (
	"errors"

	"adsettle/internal/repositories"
	"adsettle/internal/services/channel"
	"adsettle/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ChannelHandler struct {
	channelService channel.Service
}

func NewChannelHandler(channelService channel.Service) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// RegisterChannel is the channel-registration collaborator's inbound call.
func (h *ChannelHandler) RegisterChannel(c *fiber.Ctx) error {
	var input struct {
		OwnerID         uint    `json:"owner_id"`
		Category        string  `json:"category"`
		SubscriberCount int     `json:"subscriber_count"`
		MinCPC          float64 `json:"min_cpc"`
		MinCPM          float64 `json:"min_cpm"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	ch, err := h.channelService.Register(c.Context(), input.OwnerID, input.Category,
		input.SubscriberCount, input.MinCPC, input.MinCPM)
	if err != nil {
		switch {
		case errors.Is(err, channel.ErrInvalidCategory),
			errors.Is(err, channel.ErrInvalidSubscribers):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to register channel")
	}
	return utils.Created(c, fiber.Map{"channel": ch})
}

// GetChannel returns one channel.
func (h *ChannelHandler) GetChannel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid channel id")
	}
	ch, err := h.channelService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrChannelNotFound) {
			return utils.NotFound(c, "channel not found")
		}
		return utils.InternalError(c, "failed to get channel")
	}
	return utils.Success(c, fiber.Map{"channel": ch})
}

// DeactivateChannel removes a channel from future auction cycles.
func (h *ChannelHandler) DeactivateChannel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid channel id")
	}
	if err := h.channelService.Deactivate(c.Context(), uint(id)); err != nil {
		if errors.Is(err, repositories.ErrChannelNotFound) {
			return utils.NotFound(c, "channel not found")
		}
		return utils.InternalError(c, "failed to deactivate channel")
	}
	return utils.Success(c, fiber.Map{"message": "channel deactivated"})
}
