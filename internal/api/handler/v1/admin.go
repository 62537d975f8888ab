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
	"github.com/popcornhub/points-api/internal/repository"
	"github.com/popcornhub/points-api/internal/service"
)

type IconService interface {
	ListIcons(ctx context.Context, filter repository.IconFilter, page, size int) ([]domain.Icon, int64, error)
	GetIcon(ctx context.Context, id uint) (domain.Icon, error)
	CreateIcon(ctx context.Context, icon domain.Icon) (domain.Icon, error)
	UpdateIcon(ctx context.Context, icon domain.Icon) (domain.Icon, error)
	DeleteIcon(ctx context.Context, id uint) error
}

type AdminHandler struct {
	catalogSvc   CatalogService
	iconSvc      IconService
	purchaseSvc  PurchaseService
	pointSvc     PointService
	inventorySvc InventoryService
	memberSvc    MemberService
}

func NewAdminHandler(catalogSvc CatalogService, iconSvc IconService, purchaseSvc PurchaseService, pointSvc PointService, inventorySvc InventoryService, memberSvc MemberService) *AdminHandler {
	return &AdminHandler{
		catalogSvc:   catalogSvc,
		iconSvc:      iconSvc,
		purchaseSvc:  purchaseSvc,
		pointSvc:     pointSvc,
		inventorySvc: inventorySvc,
		memberSvc:    memberSvc,
	}
}

// requireAdmin resolves the caller and rejects non-admin tiers.
func (h *AdminHandler) requireAdmin(ctx *gin.Context) (domain.Member, bool) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return domain.Member{}, false
	}

	if !member.IsAdmin() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("member %v is not an admin", member.ID)))
		return domain.Member{}, false
	}

	return member, true
}

func itemFromSaveRequest(req request.SaveItemRequest) domain.PointItem {
	reqTier := domain.TierGuest
	if req.ReqTier != "" {
		reqTier = domain.Tier(req.ReqTier)
	}
	limitMode := domain.LimitNone
	if req.LimitMode != "" {
		limitMode = domain.LimitMode(req.LimitMode)
	}

	return domain.PointItem{
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Type:        domain.ItemType(req.Type),
		ReqTier:     reqTier,
		LimitMode:   limitMode,
		DailyLimit:  req.DailyLimit,
		ImageSrc:    req.ImageSrc,
		Description: req.Description,
	}
}

// HandleCreateItem godoc
// @Summary      Create a catalog item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.SaveItemRequest  true  "item"
// @Success      201  {object}  domain.PointItem
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/items [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleCreateItem(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	var req request.SaveItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.catalogSvc.CreateItem(ctx.Request.Context(), itemFromSaveRequest(req))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateItem -> h.catalogSvc.CreateItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateItem godoc
// @Summary      Update a catalog item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        itemNo  path      int                      true  "item number"
// @Param        input   body      request.SaveItemRequest  true  "item"
// @Success      200  {object}  domain.PointItem
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/items/{itemNo} [put]
// @Security     BearerAuth
func (h *AdminHandler) HandleUpdateItem(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	itemNo, err := pathID(ctx, "itemNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.SaveItemRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item := itemFromSaveRequest(req)
	item.ID = itemNo

	updated, err := h.catalogSvc.UpdateItem(ctx.Request.Context(), item)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", itemNo))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateItem -> h.catalogSvc.UpdateItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteItem godoc
// @Summary      Delete a catalog item
// @Tags         admin
// @Produce      json
// @Param        itemNo  path      int  true  "item number"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/items/{itemNo} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleDeleteItem(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	itemNo, err := pathID(ctx, "itemNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.catalogSvc.DeleteItem(ctx.Request.Context(), itemNo); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", itemNo))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteItem -> h.catalogSvc.DeleteItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// HandleListIcons godoc
// @Summary      List master icons
// @Tags         admin
// @Produce      json
// @Param        category  query     string  false  "category or ALL"
// @Param        rarity    query     string  false  "rarity or ALL"
// @Param        keyword   query     string  false  "name keyword"
// @Param        page      query     int     false  "page number"
// @Param        perPage   query     int     false  "page size"
// @Success      200  {object}  response.ListIconsResponse
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/icons [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListIcons(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	page, size := pagination(ctx)
	filter := repository.IconFilter{
		Category: ctx.Query("category"),
		Rarity:   ctx.Query("rarity"),
		Keyword:  ctx.Query("keyword"),
	}

	icons, total, err := h.iconSvc.ListIcons(ctx.Request.Context(), filter, page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleListIcons -> h.iconSvc.ListIcons -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ListIconsResponse{
		Icons:   icons,
		Total:   total,
		Page:    page,
		PerPage: size,
	})
}

// HandleCreateIcon godoc
// @Summary      Create a master icon
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.SaveIconRequest  true  "icon"
// @Success      201  {object}  domain.Icon
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/icons [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleCreateIcon(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	var req request.SaveIconRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.iconSvc.CreateIcon(ctx.Request.Context(), domain.Icon{
		Name:        req.Name,
		Category:    domain.IconCategory(req.Category),
		Rarity:      domain.Rarity(req.Rarity),
		ImageSrc:    req.ImageSrc,
		Description: req.Description,
		MovieRef:    req.MovieRef,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateIcon -> h.iconSvc.CreateIcon -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateIcon godoc
// @Summary      Update a master icon
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        iconID  path      int                      true  "icon ID"
// @Param        input   body      request.SaveIconRequest  true  "icon"
// @Success      200  {object}  domain.Icon
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/icons/{iconID} [put]
// @Security     BearerAuth
func (h *AdminHandler) HandleUpdateIcon(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	iconID, err := pathID(ctx, "iconID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.SaveIconRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.iconSvc.UpdateIcon(ctx.Request.Context(), domain.Icon{
		ID:          iconID,
		Name:        req.Name,
		Category:    domain.IconCategory(req.Category),
		Rarity:      domain.Rarity(req.Rarity),
		ImageSrc:    req.ImageSrc,
		Description: req.Description,
		MovieRef:    req.MovieRef,
	})
	if err != nil {
		if errors.Is(err, service.ErrIconNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("icon", "iconID", iconID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateIcon -> h.iconSvc.UpdateIcon -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteIcon godoc
// @Summary      Delete a master icon
// @Tags         admin
// @Produce      json
// @Param        iconID  path      int  true  "icon ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/icons/{iconID} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleDeleteIcon(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	iconID, err := pathID(ctx, "iconID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.iconSvc.DeleteIcon(ctx.Request.Context(), iconID); err != nil {
		if errors.Is(err, service.ErrIconNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("icon", "iconID", iconID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteIcon -> h.iconSvc.DeleteIcon -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// HandleGrant godoc
// @Summary      Grant an item or icon
// @Description  Places an item or icon directly into a member's inventory, free of charge.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.GrantRequest  true  "grant"
// @Success      201  {object}  domain.InventoryRecord
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/grants [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleGrant(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	var req request.GrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := h.purchaseSvc.AdminGrant(ctx.Request.Context(), req.MemberID, req.ItemNo, req.IconID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			response.RenderErr(ctx, response.ErrNotFound("member", "memberID", req.MemberID))
		case errors.Is(err, service.ErrItemNotFound):
			response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", *req.ItemNo))
		case errors.Is(err, service.ErrIconNotFound):
			response.RenderErr(ctx, response.ErrNotFound("icon", "iconID", *req.IconID))
		default:
			err = fmt.Errorf("v1.HandleGrant -> h.purchaseSvc.AdminGrant -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// HandleRecall godoc
// @Summary      Recall an inventory stack
// @Description  Removes a stack from a member's inventory with no refund.
// @Tags         admin
// @Produce      json
// @Param        inventoryNo  path      int  true  "inventory record"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/inventory/{inventoryNo} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleRecall(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	inventoryNo, err := pathID(ctx, "inventoryNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.purchaseSvc.AdminRecall(ctx.Request.Context(), inventoryNo); err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("inventory record", "inventoryNo", inventoryNo))
			return
		}

		err = fmt.Errorf("v1.HandleRecall -> h.purchaseSvc.AdminRecall -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "recalled"})
}

// HandleAdjustPoints godoc
// @Summary      Adjust a member's points
// @Description  Credits or debits a member. A debit past zero is rejected.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        memberID  path      int                          true  "member ID"
// @Param        input     body      request.AdjustPointsRequest  true  "adjustment"
// @Success      200  {object}  response.BalanceResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/members/{memberID}/points [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleAdjustPoints(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	memberID, err := pathID(ctx, "memberID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.AdjustPointsRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	balance, err := h.pointSvc.AdjustPoints(ctx.Request.Context(), memberID, req.Amount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			response.RenderErr(ctx, response.ErrNotFound("member", "memberID", memberID))
		case errors.Is(err, service.ErrInsufficientBalance):
			response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInsufficientBalance))
		default:
			err = fmt.Errorf("v1.HandleAdjustPoints -> h.pointSvc.AdjustPoints -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.BalanceResponse{MemberID: memberID, Balance: balance})
}

// HandleMemberHistory godoc
// @Summary      Get a member's point history
// @Tags         admin
// @Produce      json
// @Param        memberID  path      int  true   "member ID"
// @Param        page      query     int  false  "page number"
// @Param        perPage   query     int  false  "page size"
// @Success      200  {object}  response.HistoryResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/members/{memberID}/points [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleMemberHistory(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	memberID, err := pathID(ctx, "memberID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if _, err = h.memberSvc.GetMember(ctx.Request.Context(), memberID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("member", "memberID", memberID))
			return
		}

		err = fmt.Errorf("v1.HandleMemberHistory -> h.memberSvc.GetMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	page, size := pagination(ctx)
	entries, total, err := h.pointSvc.History(ctx.Request.Context(), memberID, page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleMemberHistory -> h.pointSvc.History -> %w", err)
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

// HandleMemberInventory godoc
// @Summary      List a member's inventory
// @Tags         admin
// @Produce      json
// @Param        memberID  path      int  true  "member ID"
// @Success      200  {array}   domain.InventoryRecord
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/members/{memberID}/inventory [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleMemberInventory(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	memberID, err := pathID(ctx, "memberID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if _, err = h.memberSvc.GetMember(ctx.Request.Context(), memberID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("member", "memberID", memberID))
			return
		}

		err = fmt.Errorf("v1.HandleMemberInventory -> h.memberSvc.GetMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	records, err := h.inventorySvc.MyInventory(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMemberInventory -> h.inventorySvc.MyInventory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// HandleListMembers godoc
// @Summary      List members
// @Tags         admin
// @Produce      json
// @Param        keyword  query     string  false  "login or nickname keyword"
// @Param        page     query     int     false  "page number"
// @Param        perPage  query     int     false  "page size"
// @Success      200  {array}   domain.Member
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/members [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListMembers(ctx *gin.Context) {
	if _, ok := h.requireAdmin(ctx); !ok {
		return
	}

	page, size := pagination(ctx)
	members, total, err := h.memberSvc.ListMembers(ctx.Request.Context(), ctx.Query("keyword"), page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMembers -> h.memberSvc.ListMembers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"members": members, "total": total, "page": page, "perPage": size})
}
