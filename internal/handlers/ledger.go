package handlers

import (
	"errors"

	"adsettle/internal/services/ledger"
	"adsettle/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	ledgerService ledger.Service
}

func NewLedgerHandler(ledgerService ledger.Service) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// GetBalance returns a user's withdrawable balance.
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	balance, err := h.ledgerService.GetBalance(c.Context(), uint(userID))
	if err != nil {
		return utils.InternalError(c, "failed to get balance")
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

// RequestWithdrawal files a payout request from the withdrawal UI.
func (h *LedgerHandler) RequestWithdrawal(c *fiber.Ctx) error {
	var input struct {
		UserID  uint    `json:"user_id"`
		Amount  float64 `json:"amount"`
		Method  string  `json:"method"`
		Details string  `json:"details"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	req, err := h.ledgerService.RequestWithdrawal(c.Context(),
		input.UserID, input.Amount, input.Method, input.Details)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrBelowMinimum),
			errors.Is(err, ledger.ErrInsufficientBalance):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to request withdrawal")
	}
	return utils.Created(c, fiber.Map{"withdrawal": req})
}

// ListWithdrawals returns a user's withdrawal history.
func (h *LedgerHandler) ListWithdrawals(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	reqs, err := h.ledgerService.ListWithdrawals(c.Context(), uint(userID))
	if err != nil {
		return utils.InternalError(c, "failed to list withdrawals")
	}
	return utils.Success(c, fiber.Map{"withdrawals": reqs})
}
