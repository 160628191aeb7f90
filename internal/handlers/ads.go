package handlers

import (
	"errors"

	"adsettle/internal/repositories"
	"adsettle/internal/services/ads"
	"adsettle/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AdHandler struct {
	adService ads.Service
}

func NewAdHandler(adService ads.Service) *AdHandler {
	return &AdHandler{adService: adService}
}

// SubmitAd accepts a new bid from the advertiser UI.
func (h *AdHandler) SubmitAd(c *fiber.Ctx) error {
	var input struct {
		AdvertiserID uint    `json:"advertiser_id"`
		Category     string  `json:"category"`
		BidType      string  `json:"bid_type"`
		BidAmount    float64 `json:"bid_amount"`
		DailyBudget  float64 `json:"daily_budget"`
		ContentRef   string  `json:"content_ref"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	ad, err := h.adService.Submit(c.Context(), ads.SubmitAdInput{
		AdvertiserID: input.AdvertiserID,
		Category:     input.Category,
		BidType:      input.BidType,
		BidAmount:    input.BidAmount,
		DailyBudget:  input.DailyBudget,
		ContentRef:   input.ContentRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, ads.ErrBidTooLow),
			errors.Is(err, ads.ErrBudgetInvalid),
			errors.Is(err, ads.ErrInvalidBidType),
			errors.Is(err, ads.ErrInvalidCategory),
			errors.Is(err, ads.ErrInvalidContent):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to submit ad")
	}
	return utils.Created(c, fiber.Map{"ad": ad})
}

// GetAd returns one ad.
func (h *AdHandler) GetAd(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid ad id")
	}
	ad, err := h.adService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrAdNotFound) {
			return utils.NotFound(c, "ad not found")
		}
		return utils.InternalError(c, "failed to get ad")
	}
	return utils.Success(c, fiber.Map{"ad": ad})
}

// ListAds returns an advertiser's ads.
func (h *AdHandler) ListAds(c *fiber.Ctx) error {
	advertiserID := c.QueryInt("advertiser_id")
	if advertiserID <= 0 {
		return utils.BadRequest(c, "advertiser_id is required")
	}
	list, err := h.adService.ListByAdvertiser(c.Context(), uint(advertiserID))
	if err != nil {
		return utils.InternalError(c, "failed to list ads")
	}
	return utils.Success(c, fiber.Map{"ads": list})
}

// SetAdStatus is the moderation collaborator's inbound transition.
func (h *AdHandler) SetAdStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid ad id")
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	ad, err := h.adService.SetStatus(c.Context(), uint(id), input.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAdNotFound):
			return utils.NotFound(c, "ad not found")
		case errors.Is(err, ads.ErrInvalidTransition):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "failed to update ad status")
	}
	return utils.Success(c, fiber.Map{"ad": ad})
}
