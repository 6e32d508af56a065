package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterMetricsRoute exposes the Prometheus registry to admin sessions only
func RegisterMetricsRoute(r gin.IRoutes, metricsHandler http.Handler, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	r.GET("/metrics", authMW, adminMW, gin.WrapH(metricsHandler))
}
