/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package api

import (
	"productdb-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-User-Name"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	notificationController := controllers.NewNotificationController()
	r.Get("/sse/{connection_id}", notificationController.StreamEvents)

	// 通知管理
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", notificationController.GetNotifications)
		r.Delete("/{id}", notificationController.DeleteNotification)
	})

	// 供应商管理
	r.Route("/vendors", func(r chi.Router) {
		vendorController := controllers.NewVendorController()
		r.Post("/", vendorController.CreateVendor)
		r.Get("/", vendorController.GetVendors)
		r.Get("/{id}", vendorController.GetVendor)
		r.Put("/{id}", vendorController.UpdateVendor)
		r.Delete("/{id}", vendorController.DeleteVendor)
	})

	// 产品管理
	r.Route("/products", func(r chi.Router) {
		productController := controllers.NewProductController()
		migrationController := controllers.NewMigrationController()
		r.Post("/", productController.SaveProduct)
		r.Get("/", productController.GetProducts)
		r.Get("/{id}", productController.GetProduct)
		r.Delete("/{id}", productController.DeleteProduct)
		r.Get("/{id}/migration-path", migrationController.GetMigrationPath)
	})

	// 产品组管理
	r.Route("/product-groups", func(r chi.Router) {
		productGroupController := controllers.NewProductGroupController()
		r.Post("/", productGroupController.CreateProductGroup)
		r.Get("/", productGroupController.GetProductGroups)
		r.Get("/{id}", productGroupController.GetProductGroup)
		r.Put("/{id}", productGroupController.UpdateProductGroup)
		r.Delete("/{id}", productGroupController.DeleteProductGroup)
	})

	// 产品列表管理
	r.Route("/product-lists", func(r chi.Router) {
		productListController := controllers.NewProductListController()
		r.Post("/", productListController.SaveProductList)
		r.Get("/", productListController.GetProductLists)
		r.Get("/{id}", productListController.GetProductList)
		r.Delete("/{id}", productListController.DeleteProductList)
	})

	// 迁移源与迁移选项管理
	migrationController := controllers.NewMigrationController()
	r.Route("/migration-sources", func(r chi.Router) {
		r.Post("/", migrationController.CreateMigrationSource)
		r.Get("/", migrationController.GetMigrationSources)
		r.Put("/{id}", migrationController.UpdateMigrationSource)
		r.Delete("/{id}", migrationController.DeleteMigrationSource)
	})
	r.Route("/migration-options", func(r chi.Router) {
		r.Post("/", migrationController.SaveMigrationOption)
		r.Get("/", migrationController.GetMigrationOptions)
		r.Delete("/{id}", migrationController.DeleteMigrationOption)
	})

	// 规范化规则管理
	r.Route("/normalization-rules", func(r chi.Router) {
		normalizationController := controllers.NewNormalizationController()
		r.Post("/", normalizationController.SaveRule)
		r.Get("/", normalizationController.GetRules)
		r.Delete("/{id}", normalizationController.DeleteRule)
		r.Post("/normalize", normalizationController.Normalize)
	})

	// 产品核对管理
	r.Route("/product-checks", func(r chi.Router) {
		productCheckController := controllers.NewProductCheckController()
		r.Post("/", productCheckController.CreateProductCheck)
		r.Get("/", productCheckController.GetProductChecks)
		r.Delete("/delete-all", productCheckController.DeleteAllProductChecks)
		r.Get("/{id}", productCheckController.GetProductCheck)
		r.Post("/{id}/run", productCheckController.RunProductCheck)
		r.Get("/{id}/entries", productCheckController.GetEntries)
		r.Delete("/{id}", productCheckController.DeleteProductCheck)
	})

	// 系统设置与统计
	settingsController := controllers.NewSettingsController()
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", settingsController.GetSettings)
		r.Get("/{key}", settingsController.GetSetting)
		r.Put("/{key}", settingsController.SetSetting)
	})
	r.Get("/statistics", settingsController.GetStatistics)

	// EoX同步管理
	r.Route("/sync", func(r chi.Router) {
		syncController := controllers.NewSyncController()
		r.Post("/trigger", syncController.TriggerSync)
		r.Get("/status", syncController.GetSyncStatus)
	})

	// 后台任务管理
	r.Route("/tasks", func(r chi.Router) {
		taskController := controllers.NewTaskController()
		r.Get("/", taskController.GetTasks)
		r.Get("/{id}", taskController.GetTask)
		r.Post("/{id}/cancel", taskController.CancelTask)
	})
}
