package router

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-docx-go/internal/api/handler"
)

// RegisterRoutes 注册 API 路由。apiKey 非空时会话接口需要 Bearer 认证，健康检查始终开放
func RegisterRoutes(h *server.Hertz, sessionHandler *handler.SessionHandler, apiKey string) {
	h.Use(accessLog)

	api := h.Group("/api/v1")
	api.GET("/health", sessionHandler.Health)

	sessions := api.Group("/sessions")
	if apiKey != "" {
		sessions.Use(apiKeyAuth(apiKey))
	}
	sessions.POST("", sessionHandler.CreateSession)
	sessions.POST("/:id/import", sessionHandler.Import)
	sessions.GET("/:id/record", sessionHandler.GetRecord)
	sessions.DELETE("/:id/record", sessionHandler.ResetRecord)
	sessions.GET("/:id/preview", sessionHandler.Preview)
	sessions.GET("/:id/export/docx", sessionHandler.ExportDocx)
}

func accessLog(c context.Context, ctx *app.RequestContext) {
	glog.CtxDebugf(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
	ctx.Next(c)
	glog.CtxInfof(c, "%s %s -> %d", string(ctx.Method()), string(ctx.Path()), ctx.Response.StatusCode())
}

func apiKeyAuth(apiKey string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(_ context.Context, ctx *app.RequestContext, _ error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, handler.ErrorResponse{Error: "invalid or missing API key"})
		}),
	)
}
