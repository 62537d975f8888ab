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

type CatalogService interface {
	ListItems(ctx context.Context, memberID uint, filter repository.ItemFilter, page, size int) (service.StoreListing, error)
	GetItem(ctx context.Context, id uint) (domain.PointItem, error)
	CreateItem(ctx context.Context, item domain.PointItem) (domain.PointItem, error)
	UpdateItem(ctx context.Context, item domain.PointItem) (domain.PointItem, error)
	DeleteItem(ctx context.Context, id uint) error
	ToggleWish(ctx context.Context, memberID, itemNo uint) (bool, error)
}

type PurchaseService interface {
	Buy(ctx context.Context, memberID, itemNo uint, idempotencyKey string) (domain.InventoryRecord, error)
	Gift(ctx context.Context, giverID uint, recipientLoginID string, itemNo uint, idempotencyKey string) (domain.InventoryRecord, error)
	AdminGrant(ctx context.Context, memberID uint, itemNo, iconID *uint) (domain.InventoryRecord, error)
	AdminRecall(ctx context.Context, inventoryNo uint) error
}

type StoreHandler struct {
	catalogSvc  CatalogService
	purchaseSvc PurchaseService
	memberSvc   MemberService
}

func NewStoreHandler(catalogSvc CatalogService, purchaseSvc PurchaseService, memberSvc MemberService) *StoreHandler {
	return &StoreHandler{
		catalogSvc:  catalogSvc,
		purchaseSvc: purchaseSvc,
		memberSvc:   memberSvc,
	}
}

// HandleListItems godoc
// @Summary      List store items
// @Description  Lists catalog items with the caller's wish marks. Filter by type and keyword.
// @Tags         store
// @Produce      json
// @Param        type     query     string  false  "item type or ALL"
// @Param        keyword  query     string  false  "name keyword"
// @Param        page     query     int     false  "page number"
// @Param        perPage  query     int     false  "page size"
// @Success      200  {object}  response.ListItemsResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /store/items [get]
// @Security     BearerAuth
func (h *StoreHandler) HandleListItems(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	page, size := pagination(ctx)
	filter := repository.ItemFilter{
		Type:    ctx.Query("type"),
		Keyword: ctx.Query("keyword"),
	}

	listing, err := h.catalogSvc.ListItems(ctx.Request.Context(), member.ID, filter, page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleListItems -> h.catalogSvc.ListItems -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	items := make([]response.StoreItem, len(listing.Items))
	for i, item := range listing.Items {
		items[i] = response.StoreItem{
			PointItem: item,
			Wished:    listing.Wished[item.ID],
		}
	}

	ctx.JSON(http.StatusOK, response.ListItemsResponse{
		Items:   items,
		Total:   listing.Total,
		Page:    listing.Page,
		PerPage: listing.PerPage,
	})
}

// HandleGetItem godoc
// @Summary      Get a store item
// @Tags         store
// @Produce      json
// @Param        itemNo  path      int  true  "item number"
// @Success      200  {object}  domain.PointItem
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /store/items/{itemNo} [get]
// @Security     BearerAuth
func (h *StoreHandler) HandleGetItem(ctx *gin.Context) {
	itemNo, err := pathID(ctx, "itemNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.catalogSvc.GetItem(ctx.Request.Context(), itemNo)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", itemNo))
			return
		}

		err = fmt.Errorf("v1.HandleGetItem -> h.catalogSvc.GetItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// renderPurchaseErr maps purchase failures onto HTTP statuses shared by
// buy and gift.
func renderPurchaseErr(ctx *gin.Context, op string, itemNo uint, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", itemNo))
	case errors.Is(err, service.ErrDuplicateRequest):
		response.RenderErr(ctx, response.ErrConflict(service.ErrDuplicateRequest))
	default:
		for _, sentinel := range []error{
			service.ErrOutOfStock,
			service.ErrInsufficientBalance,
			service.ErrTierNotMet,
			service.ErrAlreadyOwned,
			service.ErrDailyLimitReached,
			service.ErrGiftToSelf,
		} {
			if errors.Is(err, sentinel) {
				response.RenderErr(ctx, response.ErrUnprocessable(sentinel))
				return
			}
		}

		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}

// HandleBuyItem godoc
// @Summary      Buy an item
// @Description  Debits the caller's points and adds the item to their inventory. Send X-Idempotency-Key to make retries safe.
// @Tags         store
// @Accept       json
// @Produce      json
// @Param        input  body      request.BuyItemRequest  true  "purchase"
// @Success      201  {object}  domain.InventoryRecord
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /store/buy [post]
// @Security     BearerAuth
func (h *StoreHandler) HandleBuyItem(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BuyItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := h.purchaseSvc.Buy(ctx.Request.Context(), member.ID, req.ItemNo, ctx.GetHeader("X-Idempotency-Key"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("member", "memberID", member.ID))
			return
		}
		renderPurchaseErr(ctx, "v1.HandleBuyItem -> h.purchaseSvc.Buy", req.ItemNo, err)
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// HandleGiftItem godoc
// @Summary      Gift an item
// @Description  Debits the caller's points and delivers the item to the recipient's inventory.
// @Tags         store
// @Accept       json
// @Produce      json
// @Param        input  body      request.GiftItemRequest  true  "gift"
// @Success      201  {object}  domain.InventoryRecord
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /store/gift [post]
// @Security     BearerAuth
func (h *StoreHandler) HandleGiftItem(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.GiftItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := h.purchaseSvc.Gift(ctx.Request.Context(), member.ID, req.RecipientLoginID, req.ItemNo, ctx.GetHeader("X-Idempotency-Key"))
	if err != nil {
		// A missing member on the gift path is the recipient; the caller
		// needs the login id they typed, not the item.
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("member", "loginId", req.RecipientLoginID))
			return
		}
		renderPurchaseErr(ctx, "v1.HandleGiftItem -> h.purchaseSvc.Gift", req.ItemNo, err)
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// HandleToggleWish godoc
// @Summary      Toggle a wish mark
// @Tags         store
// @Produce      json
// @Param        itemNo  path      int  true  "item number"
// @Success      200  {object}  response.ToggleWishResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /store/items/{itemNo}/wish [post]
// @Security     BearerAuth
func (h *StoreHandler) HandleToggleWish(ctx *gin.Context) {
	member, respErr := getMemberFromContext(ctx, h.memberSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	itemNo, err := pathID(ctx, "itemNo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	wished, err := h.catalogSvc.ToggleWish(ctx.Request.Context(), member.ID, itemNo)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "itemNo", itemNo))
			return
		}

		err = fmt.Errorf("v1.HandleToggleWish -> h.catalogSvc.ToggleWish -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ToggleWishResponse{ItemNo: itemNo, Wished: wished})
}
