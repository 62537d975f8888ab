package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/popcornhub/points-api/docs"
	v1 "github.com/popcornhub/points-api/internal/api/handler/v1"
	"github.com/popcornhub/points-api/internal/api/middleware"
	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/config"
	"github.com/popcornhub/points-api/internal/repository"
	"github.com/popcornhub/points-api/internal/repository/dao"
	"github.com/popcornhub/points-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	cache     cache.BalanceCache
	limitZone *time.Location
}

func NewServer(conf *config.AppConfig, db *gorm.DB, balanceCache cache.BalanceCache) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	limitZone, err := time.LoadLocation(conf.API.LimitTimezone)
	if err != nil {
		zap.L().Warn("unknown limit timezone, falling back to UTC",
			zap.String("timezone", conf.API.LimitTimezone), zap.Error(err))
		limitZone = time.UTC
	}

	s := &Server{
		Config:    conf,
		Router:    engine,
		cache:     balanceCache,
		limitZone: limitZone,
	}

	s.MountMiddlewares()

	storeHandler := s.initStoreHandler(db)
	inventoryHandler := s.initInventoryHandler(db)
	pointHandler := s.initPointHandler(db)
	adminHandler := s.initAdminHandler(db)
	s.MountHandlers(storeHandler, inventoryHandler, pointHandler, adminHandler)

	return s
}

func (s *Server) memberService(db *gorm.DB) *service.MemberService {
	return service.NewMemberService(repository.NewMemberRepository(dao.NewMemberDAO(db)))
}

func (s *Server) catalogService(db *gorm.DB) *service.CatalogService {
	catalogRepo := repository.NewCatalogRepository(dao.NewCatalogDAO(db))
	wishRepo := repository.NewWishRepository(dao.NewWishDAO(db))

	return service.NewCatalogService(catalogRepo, wishRepo)
}

func (s *Server) purchaseService(db *gorm.DB) *service.PurchaseService {
	exchangeRepo := repository.NewExchangeRepository(dao.NewExchangeDAO(db))
	catalogRepo := repository.NewCatalogRepository(dao.NewCatalogDAO(db))
	memberRepo := repository.NewMemberRepository(dao.NewMemberDAO(db))
	inventoryRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(db))

	return service.NewPurchaseService(exchangeRepo, catalogRepo, memberRepo, inventoryRepo, s.cache, s.limitZone)
}

func (s *Server) pointService(db *gorm.DB) *service.PointService {
	ledgerRepo := repository.NewLedgerRepository(dao.NewLedgerDAO(db))
	exchangeRepo := repository.NewExchangeRepository(dao.NewExchangeDAO(db))
	memberRepo := repository.NewMemberRepository(dao.NewMemberDAO(db))

	return service.NewPointService(ledgerRepo, exchangeRepo, memberRepo, s.cache)
}

func (s *Server) initStoreHandler(db *gorm.DB) *v1.StoreHandler {
	return v1.NewStoreHandler(s.catalogService(db), s.purchaseService(db), s.memberService(db))
}

func (s *Server) inventoryService(db *gorm.DB) *service.InventoryService {
	inventoryRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(db))
	exchangeRepo := repository.NewExchangeRepository(dao.NewExchangeDAO(db))
	iconRepo := repository.NewIconRepository(dao.NewIconDAO(db))
	gacha := service.NewGachaResolver(s.Config, iconRepo)

	return service.NewInventoryService(inventoryRepo, exchangeRepo, gacha, s.cache)
}

func (s *Server) initInventoryHandler(db *gorm.DB) *v1.InventoryHandler {
	return v1.NewInventoryHandler(s.inventoryService(db), s.memberService(db))
}

func (s *Server) initPointHandler(db *gorm.DB) *v1.PointHandler {
	return v1.NewPointHandler(s.pointService(db), s.memberService(db))
}

func (s *Server) initAdminHandler(db *gorm.DB) *v1.AdminHandler {
	iconSvc := service.NewIconService(repository.NewIconRepository(dao.NewIconDAO(db)))

	return v1.NewAdminHandler(s.catalogService(db), iconSvc, s.purchaseService(db), s.pointService(db), s.inventoryService(db), s.memberService(db))
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(storeHandler *v1.StoreHandler, inventoryHandler *v1.InventoryHandler, pointHandler *v1.PointHandler, adminHandler *v1.AdminHandler) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/store/items", storeHandler.HandleListItems)
		authed.GET("/store/items/:itemNo", storeHandler.HandleGetItem)
		authed.POST("/store/items/:itemNo/wish", storeHandler.HandleToggleWish)
		authed.POST("/store/buy", storeHandler.HandleBuyItem)
		authed.POST("/store/gift", storeHandler.HandleGiftItem)

		authed.GET("/inventory", inventoryHandler.HandleMyInventory)
		authed.GET("/inventory/equipped", inventoryHandler.HandleEquippedLoadout)
		authed.POST("/inventory/:inventoryNo/use", inventoryHandler.HandleUseItem)
		authed.POST("/inventory/:inventoryNo/equip", inventoryHandler.HandleEquip)
		authed.POST("/inventory/:inventoryNo/unequip", inventoryHandler.HandleUnequip)
		authed.POST("/inventory/:inventoryNo/cancel", inventoryHandler.HandleCancel)
		authed.DELETE("/inventory/:inventoryNo", inventoryHandler.HandleDiscard)

		authed.GET("/points/balance", pointHandler.HandleBalance)
		authed.GET("/points/history", pointHandler.HandleHistory)
		authed.GET("/points/ranking", pointHandler.HandleRanking)

		authed.GET("/admin/members", adminHandler.HandleListMembers)
		authed.GET("/admin/members/:memberID/points", adminHandler.HandleMemberHistory)
		authed.POST("/admin/members/:memberID/points", adminHandler.HandleAdjustPoints)
		authed.GET("/admin/members/:memberID/inventory", adminHandler.HandleMemberInventory)
		authed.POST("/admin/items", adminHandler.HandleCreateItem)
		authed.PUT("/admin/items/:itemNo", adminHandler.HandleUpdateItem)
		authed.DELETE("/admin/items/:itemNo", adminHandler.HandleDeleteItem)
		authed.GET("/admin/icons", adminHandler.HandleListIcons)
		authed.POST("/admin/icons", adminHandler.HandleCreateIcon)
		authed.PUT("/admin/icons/:iconID", adminHandler.HandleUpdateIcon)
		authed.DELETE("/admin/icons/:iconID", adminHandler.HandleDeleteIcon)
		authed.POST("/admin/grants", adminHandler.HandleGrant)
		authed.DELETE("/admin/inventory/:inventoryNo", adminHandler.HandleRecall)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Points & Inventory API"
	docs.SwaggerInfo.Description = "Points ledger, store, inventory and icon gacha."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
