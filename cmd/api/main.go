package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"leave-manager/internal/config"
	"leave-manager/internal/database"
	"leave-manager/internal/handlers"
	"leave-manager/internal/middleware"
	"leave-manager/internal/repositories"
	"leave-manager/internal/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Применение миграций схемы
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	// Инициализация подключения к базе данных
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Создание репозиториев
	userRepo := repositories.NewUserRepository(db)
	leaveRepo := repositories.NewLeaveRepository(db)

	// Создание сервисов
	authService := services.NewAuthService(userRepo, leaveRepo, cfg.Defaults, cfg.JWT.Secret)
	leaveService := services.NewLeaveService(leaveRepo, userRepo)
	balanceService := services.NewBalanceService(leaveRepo)
	calendarService := services.NewCalendarService(leaveRepo)
	userService := services.NewUserService(userRepo)

	// Создание обработчиков
	authHandler := handlers.NewAuthHandler(authService)
	appHandler := handlers.NewAppHandler(leaveService, balanceService, calendarService, userService)

	// Настройка маршрутизатора Gin
	router := gin.Default()

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Публичные маршруты
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/register", authHandler.Register)

	// Защищенные маршруты
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		api.GET("/profile", appHandler.GetMyProfile)

		// Маршруты для работы с заявками
		leaves := api.Group("/leaves")
		{
			leaves.POST("", appHandler.CreateLeaveRequest)
			leaves.GET("/my", appHandler.GetMyLeaveRequests)
			leaves.POST("/:id/cancel", appHandler.CancelLeaveRequest)

			// Маршруты для согласующих и администраторов
			leavesMgmt := leaves.Group("")
			leavesMgmt.Use(middleware.ApproverOrAdminOnly())
			{
				leavesMgmt.GET("/pending", appHandler.GetPendingLeaveRequests)
				leavesMgmt.POST("/:id/approve", appHandler.ApproveLeaveRequest)
				leavesMgmt.POST("/:id/reject", appHandler.RejectLeaveRequest)
			}
		}

		// Календарь доступности команды
		calendar := api.Group("/calendar")
		{
			calendar.GET("/on-date", appHandler.GetWhoIsOut)
			calendar.GET("/upcoming", appHandler.GetUpcomingLeave)
			calendar.GET("/markers", appHandler.GetCalendarMarkers)
		}

		// Собственный баланс и уведомления
		api.GET("/balances/my", appHandler.GetMyBalance)
		api.GET("/notifications", appHandler.GetMyNotifications)
		api.POST("/notifications/:id/read", appHandler.MarkNotificationRead)

		// Маршруты только для администраторов
		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", appHandler.GetAllUsers)
				adminUsers.PUT("/:id", appHandler.UpdateUserAdmin)
				adminUsers.PUT("/:id/approver", appHandler.AssignApprover)
				adminUsers.GET("/:id/balance", appHandler.GetUserBalance)
				adminUsers.PUT("/:id/balance", appHandler.SetUserBalance)
			}

			admin.GET("/balances", appHandler.GetAllBalances)
			admin.GET("/reports/leave-summary", appHandler.GetLeaveSummaryPDF)
		}
	}

	// Запуск сервера
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
