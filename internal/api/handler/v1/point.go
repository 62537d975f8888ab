package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/popcornhub/points-api/internal/api/handler/v1/response"
	"github.com/popcornhub/points-api/internal/domain"
)

type PointService interface {
	Balance(ctx context.Context, memberID uint) (int, error)
	History(ctx context.Context, memberID uint, page, size int) ([]domain.LedgerEntry, int64, error)
	Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error)
	AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error)
}

type PointHandler struct {
	svc       PointService
	memberSvc MemberService
}

func NewPointHandler(svc PointService, memberSvc MemberService) *PointHandler {
	return &PointHandler{
		svc:       svc,
		memberSvc: memberSvc,
	}
}

// HandleBalance godoc
// @Summary      Get my point balance
// @Tags         points
// @Produce      json
// @Success      200  {object}  response.BalanceResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /points/balance [get]
// @Security     BearerAuth
func (h *PointHandler) HandleBalance(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	balance, err := h.svc.Balance(ctx.Request.Context(), member.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleBalance -> h.svc.Balance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.BalanceResponse{MemberID: member.ID, Balance: balance})
}

// HandleHistory godoc
// @Summary      Get my point history
// @Description  Lists ledger entries newest first.
// @Tags         points
// @Produce      json
// @Param        page     query     int  false  "page number"
// @Param        perPage  query     int  false  "page size"
// @Success      200  {object}  response.HistoryResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /points/history [get]
// @Security     BearerAuth
func (h *PointHandler) HandleHistory(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	page, size := pagination(ctx)
	entries, total, err := h.svc.History(ctx.Request.Context(), member.ID, page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleHistory -> h.svc.History -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.HistoryResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		PerPage: size,
	})
}

// HandleRanking godoc
// @Summary      Get the points ranking
// @Tags         points
// @Produce      json
// @Param        limit  query     int  false  "number of rows, max 100"
// @Success      200  {array}   domain.RankingEntry
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /points/ranking [get]
// @Security     BearerAuth
func (h *PointHandler) HandleRanking(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := h.svc.Ranking(ctx.Request.Context(), limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleRanking -> h.svc.Ranking -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}
