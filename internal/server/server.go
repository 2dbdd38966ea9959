package server

import (
	"log"
	"strings"
	"time"

	"rekod.my/famvault/internal/config"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/scheduler"
	"rekod.my/famvault/pkg/push"
	"rekod.my/famvault/pkg/storage"

	activityHttp "rekod.my/famvault/internal/modules/activity/delivery/http"
	activityRepo "rekod.my/famvault/internal/modules/activity/repository"
	activityService "rekod.my/famvault/internal/modules/activity/service"

	adminHttp "rekod.my/famvault/internal/modules/admin/delivery/http"
	adminService "rekod.my/famvault/internal/modules/admin/service"

	deviceHttp "rekod.my/famvault/internal/modules/device/delivery/http"
	deviceRepo "rekod.my/famvault/internal/modules/device/repository"

	documentHttp "rekod.my/famvault/internal/modules/document/delivery/http"
	documentRepo "rekod.my/famvault/internal/modules/document/repository"
	documentService "rekod.my/famvault/internal/modules/document/service"

	eventHttp "rekod.my/famvault/internal/modules/event/delivery/http"
	eventRepo "rekod.my/famvault/internal/modules/event/repository"

	favoriteHttp "rekod.my/famvault/internal/modules/favorite/delivery/http"
	favoriteRepo "rekod.my/famvault/internal/modules/favorite/repository"
	favoriteService "rekod.my/famvault/internal/modules/favorite/service"

	messageHttp "rekod.my/famvault/internal/modules/message/delivery/http"
	messageRepo "rekod.my/famvault/internal/modules/message/repository"

	notiHttp "rekod.my/famvault/internal/modules/notification/delivery/http"
	notifRepo "rekod.my/famvault/internal/modules/notification/repository"
	notifService "rekod.my/famvault/internal/modules/notification/service"

	personHttp "rekod.my/famvault/internal/modules/person/delivery/http"
	personRepo "rekod.my/famvault/internal/modules/person/repository"
	personService "rekod.my/famvault/internal/modules/person/service"

	searchService "rekod.my/famvault/internal/modules/search/service"

	shareHttp "rekod.my/famvault/internal/modules/share/delivery/http"
	shareRepo "rekod.my/famvault/internal/modules/share/repository"
	shareService "rekod.my/famvault/internal/modules/share/service"

	suggestionHttp "rekod.my/famvault/internal/modules/suggestion/delivery/http"
	suggestionRepo "rekod.my/famvault/internal/modules/suggestion/repository"

	userHttp "rekod.my/famvault/internal/modules/user/delivery/http"
	userRepo "rekod.my/famvault/internal/modules/user/repository"
	userService "rekod.my/famvault/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	documentStorage, err := storage.NewDiskStorage(cfg.DocumentRoot)
	if err != nil {
		log.Fatalf("failed to initialize document storage: %v", err)
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := searchService.NewSearchService(meiliClient)

	pusher := push.NewClient()

	activities := activityRepo.NewActivityRepository(db)
	activitySvc := activityService.NewActivityService(activities)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)

	authSvc := userService.NewAuthService(users, imageStorage, activitySvc, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := userService.NewProfileService(users, imageStorage)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	favorites := favoriteRepo.NewFavoriteRepository(db)

	people := personRepo.NewPersonRepository(db)
	personSvc := personService.NewService(people, documentStorage, searchSvc, activitySvc, favorites)
	personHandler := personHttp.NewPersonHandler(personSvc)

	documents := documentRepo.NewDocumentRepository(db)
	documentSvc := documentService.NewDocumentService(documents, personSvc, documentStorage, activitySvc)
	documentHandler := documentHttp.NewDocumentHandler(documentSvc)

	shares := shareRepo.NewShareRepository(db)
	shareSvc := shareService.NewShareService(shares, personSvc, users, activitySvc)
	shareHandler := shareHttp.NewShareHandler(shareSvc)

	favoriteSvc := favoriteService.NewFavoriteService(favorites, personSvc)
	favoriteHandler := favoriteHttp.NewFavoriteHandler(favoriteSvc)

	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	devices := deviceRepo.NewDeviceRepository(db)
	deviceHandler := deviceHttp.NewDeviceHandler(devices)

	suggestions := suggestionRepo.NewSuggestionRepository(db)
	suggestionHandler := suggestionHttp.NewSuggestionHandler(suggestions)

	messages := messageRepo.NewMessageRepository(db)
	messageHandler := messageHttp.NewMessageHandler(messages)

	events := eventRepo.NewEventRepository(db)
	eventHandler := eventHttp.NewEventHandler(events)

	adminSvc := adminService.NewAdminService(users, people, documents, devices, notificationSvc, documentStorage, pusher, activitySvc)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	birthdayJob := scheduler.NewBirthdayJob(people, users, notificationSvc, devices, pusher)
	jobs := scheduler.New(birthdayJob)
	if err := jobs.Start(cfg.BirthdayTodaySpec, cfg.BirthdayTomorrowSpec); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Authenticated but possibly unapproved users can still see their own
	// profile, so the mobile app can show the waiting-for-approval screen.
	authed := api.Group("")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.GET("/profile/me", profileHandler.GetCurrent)
		authed.PUT("/profile", profileHandler.Update)
	}

	// Everything else requires an approved account.
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth(), authMiddleware.RequireApproved())
	{
		// People
		protected.POST("/people", personHandler.Create)
		protected.GET("/people", personHandler.List)
		protected.GET("/people/nric-parse", personHandler.ParseNRIC)
		protected.GET("/people/:id", personHandler.Get)
		protected.PUT("/people/:id", personHandler.Update)
		protected.DELETE("/people/:id", personHandler.Delete)

		// Documents
		protected.POST("/people/:id/documents", documentHandler.Upload)
		protected.GET("/people/:id/documents", documentHandler.ListForPerson)
		protected.GET("/documents/:id/download", documentHandler.Download)
		protected.GET("/documents/:id/preview", documentHandler.Preview)
		protected.PATCH("/documents/:id/visibility", documentHandler.SetPublic)
		protected.DELETE("/documents/:id", documentHandler.Delete)

		// Shares
		protected.POST("/people/:id/shares", shareHandler.Share)
		protected.GET("/people/:id/shares", shareHandler.ListForPerson)
		protected.DELETE("/people/:id/shares/:user_id", shareHandler.Unshare)
		protected.GET("/shared-with-me", shareHandler.ListSharedWithMe)

		// Favorites
		protected.POST("/people/:id/favorite", favoriteHandler.Toggle)
		protected.GET("/favorites", favoriteHandler.List)

		// Notifications
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Devices
		protected.POST("/devices", deviceHandler.Register)
		protected.DELETE("/devices", deviceHandler.Delete)

		// Suggestions
		protected.POST("/suggestions", suggestionHandler.Create)
		protected.GET("/suggestions/me", suggestionHandler.ListMine)

		// Events
		protected.GET("/events", eventHandler.List)

		// Group chat
		protected.POST("/messages", messageHandler.Create)
		protected.GET("/messages", messageHandler.List)
		protected.DELETE("/messages/:id", messageHandler.Delete)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/users/:id/approve", adminHandler.Approve)
			adminGroup.DELETE("/users/:id", adminHandler.Reject)
			adminGroup.PATCH("/users/:id/role", adminHandler.SetRole)
			adminGroup.POST("/broadcast", adminHandler.Broadcast)
			adminGroup.GET("/stats", adminHandler.Stats)
			adminGroup.GET("/activity", activityHandler.List)
			adminGroup.GET("/suggestions", suggestionHandler.ListAll)
			adminGroup.PUT("/suggestions/:id/read", suggestionHandler.MarkAsRead)
			adminGroup.DELETE("/suggestions/:id", suggestionHandler.Delete)
			adminGroup.POST("/events", eventHandler.Create)
			adminGroup.DELETE("/events/:id", eventHandler.Delete)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
