package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter - API 라우트 등록
//
//	GET  /ping
//	GET  /
//	POST /api/v1/sync              (Bearer)
//	GET  /api/v1/sync/runs
//	GET  /api/v1/sync/runs/latest
//	GET  /api/v1/datasets
func NewRouter(syncHandler *SyncHandler, verifier TokenVerifier, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(allowedOrigins, false))

	router.GET("/ping", Ping)
	router.GET("/", Root)

	v1 := router.Group("/api/v1")
	v1.GET("/sync/runs", syncHandler.ListRuns)
	v1.GET("/sync/runs/latest", syncHandler.GetLatestRun)
	v1.GET("/datasets", syncHandler.ListDatasets)

	protected := v1.Group("")
	protected.Use(AuthMiddleware(verifier))
	protected.POST("/sync", syncHandler.TriggerSync)

	return router
}
