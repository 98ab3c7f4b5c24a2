package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/app"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/bootstrap"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/cache"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/platform/rabbitmq"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/repository"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/transport/http/handler"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	stationRepo := repository.NewStationRepository(app.MySQL)
	predictionRepo := repository.NewPredictionRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		stationRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	resultCache := cache.NewResultCache(
		app.Redis,
		time.Duration(app.Config.Redis.ResultTTLSeconds)*time.Second,
	)
	recordPublisher := rabbitmq.NewRecordPublisher(app.MQConn, app.Config.RabbitMQ.RecordPersistQueue)
	screeningService := appsvc.NewScreeningService(
		app.Classifier,
		predictionRepo,
		resultCache,
		recordPublisher,
		app.Config.Screening.ArchiveDir,
	)

	authHandler := handler.NewAuthHandler(authService)
	screeningHandler := handler.NewScreeningHandler(screeningService, int64(app.Config.Screening.MaxImageMB)<<20)

	router.POST("/predict", screeningHandler.Predict)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	v1.GET("/predictions", middleware.AuthJWT(app.Config.Auth.JWTSecret), screeningHandler.Records)

	return router
}
