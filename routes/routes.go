package routes

import (
	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	recordCtl := controllers.NewRecordController(s)
	requestCtl := controllers.NewRequestController(s)
	loanCtl := controllers.NewLoanController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), a.Gate)
	adminMW := app.AdminOnly()
	requesterMW := app.RequesterOnly()

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", authMW)
	{
		api.GET("/whoami", s.WhoAmI)
		api.POST("/logout", s.Logout)
	}

	// ------------------------------
	// 档案登记（仅管理员）
	// ------------------------------
	recordsAdmin := api.Group("/records", adminMW)
	{
		recordsAdmin.POST("", recordCtl.CreateRecord)
		recordsAdmin.DELETE("/:id", recordCtl.DeleteRecord)
		recordsAdmin.POST("/:id/toggle-lock", recordCtl.ToggleLock)
	}
	records := api.Group("/records", requesterMW)
	{
		records.GET("", recordCtl.ListRecords)
		records.GET("/:id", recordCtl.GetRecord)
	}

	// ------------------------------
	// 申请 / 借阅
	// ------------------------------
	requests := api.Group("/requests", requesterMW)
	{
		requests.POST("", requestCtl.CreateRequest)
		requests.GET("", requestCtl.ListMyRequests)
		// 本人或管理员，在 controller 里校验
		requests.GET("/:id", requestCtl.GetRequest)
		requests.POST("/:id/confirm-delivery", requestCtl.ConfirmDelivery)
		requests.POST("/:id/prepare", adminMW, requestCtl.Prepare)
		requests.DELETE("/:id", adminMW, requestCtl.DeleteRequest)
	}

	loans := api.Group("/loans", requesterMW)
	{
		loans.GET("/:id", loanCtl.GetLoan)
		loans.POST("/:id/return", loanCtl.Return)
	}

	admin := api.Group("/admin", adminMW)
	{
		admin.GET("/requests", requestCtl.ListRequestsAdmin) // ?state=&page=&size=
	}
}
