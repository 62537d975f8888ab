package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/popcornhub/points-api/internal/api/handler/v1/response"
	"github.com/popcornhub/points-api/internal/api/middleware"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/service"
)

type MemberService interface {
	GetMember(ctx context.Context, id uint) (domain.Member, error)
	GetMemberByLoginID(ctx context.Context, loginID string) (domain.Member, error)
	ListMembers(ctx context.Context, keyword string, page, size int) ([]domain.Member, int64, error)
}

// getMemberFromContext resolves the authenticated member set by the JWT
// middleware.
func getMemberFromContext(ctx *gin.Context, svc MemberService) (domain.Member, *response.Err) {
	raw, exists := ctx.Get(middleware.ContextKeyMemberID)
	if !exists {
		return domain.Member{}, response.ErrUnauthorized("not authenticated")
	}

	memberID, ok := raw.(uint)
	if !ok || memberID == 0 {
		return domain.Member{}, response.ErrUnauthorized("not authenticated")
	}

	member, err := svc.GetMember(ctx.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return domain.Member{}, response.ErrNotFound("member", "memberID", memberID)
		}

		return domain.Member{}, response.ErrInternalServerError(fmt.Errorf("getMemberFromContext -> svc.GetMember -> %w", err))
	}

	return member, nil
}

// pathID parses a positive uint path parameter.
func pathID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %v", name)
	}

	return uint(id), nil
}

// pagination reads page/perPage query params with sane bounds.
func pagination(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(ctx.DefaultQuery("perPage", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	return page, size
}
