package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the gin engine with recovery, request logging and the handler's routes
func NewRouter(h *Handler, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), RequestLogger(log))
	h.RegisterRoutes(router)
	return router
}
