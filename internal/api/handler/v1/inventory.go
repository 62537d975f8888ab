package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/popcornhub/points-api/internal/api/handler/v1/request"
	"github.com/popcornhub/points-api/internal/api/handler/v1/response"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/service"
)

type InventoryService interface {
	MyInventory(ctx context.Context, memberID uint) ([]domain.InventoryRecord, error)
	EquippedLoadout(ctx context.Context, memberID uint) (map[string]domain.InventoryRecord, error)
	UseItem(ctx context.Context, memberID, inventoryNo uint, nickname string) (service.UseResult, error)
	Equip(ctx context.Context, memberID, inventoryNo uint) error
	Unequip(ctx context.Context, memberID, inventoryNo uint) error
	Cancel(ctx context.Context, memberID, inventoryNo uint) (int, error)
	Discard(ctx context.Context, memberID, inventoryNo uint) error
}

type InventoryHandler struct {
	svc       InventoryService
	memberSvc MemberService
}

func NewInventoryHandler(svc InventoryService, memberSvc MemberService) *InventoryHandler {
	return &InventoryHandler{
		svc:       svc,
		memberSvc: memberSvc,
	}
}

func renderInventoryErr(ctx *gin.Context, op string, inventoryNo uint, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.RenderErr(ctx, response.ErrNotFound("inventory record", "inventoryNo", inventoryNo))
	default:
		for _, sentinel := range []error{
			service.ErrAlreadyEquipped,
			service.ErrNotEquipped,
			service.ErrInvalidState,
			service.ErrNotUsable,
			service.ErrCatalogEmpty,
		} {
			if errors.Is(err, sentinel) {
				response.RenderErr(ctx, response.ErrUnprocessable(sentinel))
				return
			}
		}

		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}

// HandleMyInventory godoc
// @Summary      List my inventory
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   domain.InventoryRecord
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleMyInventory(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	records, err := h.svc.MyInventory(ctx.Request.Context(), member.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMyInventory -> h.svc.MyInventory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// HandleEquippedLoadout godoc
// @Summary      My equipped cosmetics
// @Description  Returns the equipped record per cosmetic slot. Empty slots are omitted.
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  map[string]domain.InventoryRecord
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/equipped [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleEquippedLoadout(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	loadout, err := h.svc.EquippedLoadout(ctx.Request.Context(), member.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleEquippedLoadout -> h.svc.EquippedLoadout -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, loadout)
}

// HandleUseItem godoc
// @Summary      Use a consumable
// @Description  Consumes one unit and applies its effect. Nickname changes read the nickname field of the body.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        inventoryNo  path      int                      true   "inventory record"
// @Param        input        body      request.UseItemRequest   false  "use payload"
// @Success      200  {object}  service.UseResult
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/{inventoryNo}/use [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleUseItem(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UseItemRequest
	if ctx.Request.ContentLength > 0 {
		if err = ctx.ShouldBindJSON(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		if err = req.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	result, err := h.svc.UseItem(ctx.Request.Context(), member.ID, inventoryNo, req.Nickname)
	if err != nil {
		if errors.Is(err, service.ErrNicknameInvalid) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNicknameInvalid))
			return
		}

		renderInventoryErr(ctx, "v1.HandleUseItem -> h.svc.UseItem", inventoryNo, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleEquip godoc
// @Summary      Equip a cosmetic
// @Description  Equips the record and unequips whatever held its slot.
// @Tags         inventory
// @Produce      json
// @Param        inventoryNo  path      int  true  "inventory record"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/{inventoryNo}/equip [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleEquip(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.Equip(ctx.Request.Context(), member.ID, inventoryNo); err != nil {
		renderInventoryErr(ctx, "v1.HandleEquip -> h.svc.Equip", inventoryNo, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "equipped"})
}

// HandleUnequip godoc
// @Summary      Unequip a cosmetic
// @Tags         inventory
// @Produce      json
// @Param        inventoryNo  path      int  true  "inventory record"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/{inventoryNo}/unequip [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleUnequip(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.Unequip(ctx.Request.Context(), member.ID, inventoryNo); err != nil {
		renderInventoryErr(ctx, "v1.HandleUnequip -> h.svc.Unequip", inventoryNo, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "unequipped"})
}

// HandleCancel godoc
// @Summary      Cancel a purchase
// @Description  Returns one unit to stock and refunds its price. Equipped records cannot be cancelled.
// @Tags         inventory
// @Produce      json
// @Param        inventoryNo  path      int  true  "inventory record"
// @Success      200  {object}  response.CancelPurchaseResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/{inventoryNo}/cancel [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleCancel(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	refund, err := h.svc.Cancel(ctx.Request.Context(), member.ID, inventoryNo)
	if err != nil {
		renderInventoryErr(ctx, "v1.HandleCancel -> h.svc.Cancel", inventoryNo, err)
		return
	}

	ctx.JSON(http.StatusOK, response.CancelPurchaseResponse{InventoryNo: inventoryNo, Refunded: refund})
}

// HandleDiscard godoc
// @Summary      Discard an inventory unit
// @Description  Drops one unit permanently, with no refund.
// @Tags         inventory
// @Produce      json
// @Param        inventoryNo  path      int  true  "inventory record"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /inventory/{inventoryNo} [delete]
// @Security     BearerAuth
func (h *InventoryHandler) HandleDiscard(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.Discard(ctx.Request.Context(), member.ID, inventoryNo); err != nil {
		renderInventoryErr(ctx, "v1.HandleDiscard -> h.svc.Discard", inventoryNo, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "discarded"})
}
