package handlers

import (
	"errors"
	"time"

	"adsettle/internal/repositories"
	"adsettle/internal/services/auction"
	"adsettle/internal/services/ledger"
	"adsettle/internal/services/settlement"
	"adsettle/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the operator surface: manual cycle triggers,
// withdrawal payout transitions, and the job-run audit trail.
type AdminHandler struct {
	auctionService    auction.Service
	settlementService settlement.Service
	ledgerService     ledger.Service
	jobRuns           repositories.JobRunRepository
}

func NewAdminHandler(
	auctionService auction.Service,
	settlementService settlement.Service,
	ledgerService ledger.Service,
	jobRuns repositories.JobRunRepository,
) *AdminHandler {
	return &AdminHandler{
		auctionService:    auctionService,
		settlementService: settlementService,
		ledgerService:     ledgerService,
		jobRuns:           jobRuns,
	}
}

func dateParam(c *fiber.Ctx) (string, error) {
	date := c.Query("date")
	if date == "" {
		return time.Now().UTC().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", err
	}
	return date, nil
}

// RunAuctionCycle triggers a cycle outside the schedule, e.g. after a
// failed run. Idempotency makes the manual re-run safe.
func (h *AdminHandler) RunAuctionCycle(c *fiber.Ctx) error {
	date, err := dateParam(c)
	if err != nil {
		return utils.BadRequest(c, "date must be YYYY-MM-DD")
	}
	results, err := h.auctionService.RunCycle(c.Context(), date)
	if err != nil {
		return utils.InternalError(c, "auction cycle failed")
	}

	type resultView struct {
		ChannelID   uint    `json:"channel_id"`
		AuctionID   uint    `json:"auction_id,omitempty"`
		WinningAdID uint    `json:"winning_ad_id,omitempty"`
		WinningBid  float64 `json:"winning_bid,omitempty"`
		Skipped     bool    `json:"skipped"`
		Error       string  `json:"error,omitempty"`
	}
	views := make([]resultView, 0, len(results))
	for _, r := range results {
		v := resultView{
			ChannelID:   r.ChannelID,
			AuctionID:   r.AuctionID,
			WinningAdID: r.WinningAdID,
			WinningBid:  r.WinningBid,
			Skipped:     r.Skipped,
		}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		views = append(views, v)
	}
	return utils.Success(c, fiber.Map{"date": date, "results": views})
}

// RunSettlement triggers settlement for a date.
func (h *AdminHandler) RunSettlement(c *fiber.Ctx) error {
	date, err := dateParam(c)
	if err != nil {
		return utils.BadRequest(c, "date must be YYYY-MM-DD")
	}
	if err := h.settlementService.SettleDay(c.Context(), date); err != nil {
		return utils.InternalError(c, err.Error())
	}
	return utils.Success(c, fiber.Map{"date": date, "message": "settlement completed"})
}

// MarkWithdrawalPaid completes a payout and decrements the balance.
func (h *AdminHandler) MarkWithdrawalPaid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid withdrawal id")
	}
	if err := h.ledgerService.MarkWithdrawalPaid(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, repositories.ErrWithdrawalNotFound):
			return utils.NotFound(c, "withdrawal not found")
		case errors.Is(err, ledger.ErrWithdrawalClosed):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "failed to mark withdrawal paid")
	}
	return utils.Success(c, fiber.Map{"message": "withdrawal paid"})
}

// RejectWithdrawal declines a pending payout request.
func (h *AdminHandler) RejectWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid withdrawal id")
	}
	if err := h.ledgerService.RejectWithdrawal(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, repositories.ErrWithdrawalNotFound):
			return utils.NotFound(c, "withdrawal not found")
		case errors.Is(err, ledger.ErrWithdrawalClosed):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "failed to reject withdrawal")
	}
	return utils.Success(c, fiber.Map{"message": "withdrawal rejected"})
}

// ListJobRuns returns the recent scheduler history.
func (h *AdminHandler) ListJobRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	runs, err := h.jobRuns.ListRecent(limit)
	if err != nil {
		return utils.InternalError(c, "failed to list job runs")
	}
	return utils.Success(c, fiber.Map{"runs": runs})
}
