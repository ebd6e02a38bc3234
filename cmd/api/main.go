package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appinventory "github.com/xiebiao/bookcatalog/internal/application/inventory"
	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/event"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// main 主程序入口
// 手动依赖注入,组装顺序: Repository ← Service ← UseCase ← Handler
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息队列(可选,关闭时补货告警降级为不发布)
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
		fmt.Printf("  - MQ交换机: %s\n", cfg.MQ.Exchange)
	}

	// 6. 依赖注入（手动组装）

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	alertCache := redis.NewAlertCache(redisClient, redis.DefaultAlertSuppressWindow)
	notifier := event.NewNotifier(publisher, alertCache)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)
	inventoryService := inventory.NewService(bookRepo, notifier)

	// 种子化初始管理员(注册接口只产生普通用户)
	seedAdmin(cfg, userService)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	createBookUseCase := appbook.NewCreateBookUseCase(bookService, txManager)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService, txManager)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService)
	searchBooksUseCase := appbook.NewSearchBooksUseCase(bookService)
	reserveUseCase := appinventory.NewReserveUseCase(inventoryService)
	releaseUseCase := appinventory.NewReleaseUseCase(inventoryService)
	adjustUseCase := appinventory.NewAdjustUseCase(inventoryService)
	bulkAdjustUseCase := appinventory.NewBulkAdjustUseCase(inventoryService)
	reorderLevelUseCase := appinventory.NewUpdateReorderLevelUseCase(inventoryService)
	restockReportUseCase := appinventory.NewRestockReportUseCase(inventoryService)
	lowStockUseCase := appinventory.NewLowStockUseCase(inventoryService)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(
		createBookUseCase, getBookUseCase, updateBookUseCase,
		deleteBookUseCase, searchBooksUseCase,
	)
	inventoryHandler := handler.NewInventoryHandler(
		reserveUseCase, releaseUseCase, adjustUseCase, bulkAdjustUseCase,
		reorderLevelUseCase, restockReportUseCase, lowStockUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, userHandler, bookHandler, inventoryHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// seedAdmin 按配置创建初始管理员账号
// email为空跳过;账号已存在静默跳过(重启幂等);其他失败只告警不中断启动
func seedAdmin(cfg *config.Config, userService user.Service) {
	if cfg.Admin.Email == "" {
		return
	}

	_, err := userService.Register(context.Background(),
		cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Nickname, user.RoleAdmin)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailDuplicate) {
			return
		}
		log.Printf("⚠️  种子化管理员失败: %v", err)
		return
	}
	fmt.Printf("  - 初始管理员: %s\n", cfg.Admin.Email)
}

// registerRoutes 注册路由
// 权限分三档:公开(注册登录)、登录(目录查询/预留释放)、管理员(目录写+库存管理)
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	inventoryHandler *handler.InventoryHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书目录
		books := v1.Group("/books")
		{
			// 查询(登录即可)
			books.GET("", authMiddleware.RequireAuth(), bookHandler.SearchBooks)
			books.GET("/:id", authMiddleware.RequireAuth(), bookHandler.GetBook)

			// 目录维护(管理员)
			admin := books.Group("")
			admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				admin.POST("", bookHandler.CreateBook)
				admin.PUT("/:id", bookHandler.UpdateBook)
				admin.DELETE("/:id", bookHandler.DeleteBook)
				admin.POST("/:id/adjust", inventoryHandler.Adjust)
				admin.PUT("/:id/reorder-level", inventoryHandler.UpdateReorderLevel)
			}

			// 预留/释放(登录即可,下单流程调用)
			authed := books.Group("")
			authed.Use(authMiddleware.RequireAuth())
			{
				authed.POST("/:id/reserve", inventoryHandler.Reserve)
				authed.POST("/:id/release", inventoryHandler.Release)
			}
		}

		// 库存管理(管理员)
		inv := v1.Group("/inventory")
		inv.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			inv.POST("/bulk-adjust", inventoryHandler.BulkAdjust)
			inv.GET("/restock-report", inventoryHandler.RestockReport)
			inv.GET("/low-stock", inventoryHandler.LowStock)
		}
	}
}
