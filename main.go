package main

import (
	"fmt"
	"log"
	"os"

	_ "live_queue/docs"
	"live_queue/internal/auth"
	"live_queue/internal/handlers"
	"live_queue/internal/models"
	"live_queue/internal/storage"
	"live_queue/internal/tasks"
	"live_queue/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Живая очередь
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.Admin{}, &models.QueueEntry{}, &models.SystemSettings{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	handlers.EnsureDefaultAdmin()

	cronScheduler := tasks.InitScheduler()
	defer cronScheduler.Stop()

	// Взводим таймер автооткрытия по сохранённым настройкам.
	tasks.Opener.Reschedule()
	defer tasks.Opener.Cancel()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	public := r.Group("/api/queue")
	{
		// Администратор пользуется тем же эндпоинтом: токен читается,
		// если передан, и снимает ограничение закрытой записи.
		public.POST("/register", auth.OptionalAuthMiddleware(), handlers.RegisterEntryHandler)
		public.GET("/status", handlers.QueueStatusHandler)
		public.GET("/ws", ws.QueueWebSocketHandler)
	}

	admin := r.Group("/api", auth.AuthMiddleware())
	{
		admin.GET("/queue/entries", handlers.ListEntriesHandler)
		admin.POST("/queue/call-next", handlers.CallNextHandler)
		admin.PUT("/queue/entries/:id/status", handlers.ChangeStatusHandler)
		admin.PUT("/queue/entries/:id/order", handlers.ReorderHandler)
		admin.DELETE("/queue/entries/:id", handlers.DeleteEntryHandler)
		admin.DELETE("/queue/entries", handlers.ClearAllHandler)
		admin.GET("/settings", handlers.GetSettingsHandler)
		admin.PUT("/settings", handlers.UpdateSettingsHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
