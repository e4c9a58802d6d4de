/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、全局服务装配与调度器启动
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动 -> 数据库连接 -> 迁移与基础数据 -> 服务装配 -> 调度器启动
 * @rules 确保所有依赖服务正常启动后才提供API服务；保存钩子链在装配期
 *        一次性注册，保证产品保存到迁移选项重解析的单向传播
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs dev_docs/model.md
 */

package service

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"productdb-service/service/catalog"
	"productdb-service/service/database"
	"productdb-service/service/event"
	"productdb-service/service/event/connectors"
	"productdb-service/service/eoxclient"
	"productdb-service/service/migration"
	"productdb-service/service/normalization"
	"productdb-service/service/product_check"
	"productdb-service/service/scheduler"
	"productdb-service/service/settings"
	"productdb-service/service/sync_engine"
)

var (
	DB                        *gorm.DB
	GlobalSettingsService     *settings.SettingsService
	GlobalLeaseLock           *settings.LeaseLock
	GlobalEventService        *event.EventService
	GlobalVendorService       *catalog.VendorService
	GlobalProductService      *catalog.ProductService
	GlobalProductGroupService *catalog.ProductGroupService
	GlobalProductListService  *catalog.ProductListService
	GlobalMigrationService    *migration.MigrationService
	GlobalNormalization       *normalization.NormalizationService
	GlobalEoxClient           *eoxclient.EoxClient
	GlobalSyncService         *sync_engine.SyncService
	GlobalProductCheckService *product_check.ProductCheckService
	GlobalTaskRuntime         *scheduler.TaskRuntime
	GlobalCronScheduler       *scheduler.CronScheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "productdb")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("基础数据初始化完成")
}

// initServices 初始化服务
func initServices() {
	// 设置缓存：redis 可用时走 redis，否则退化为进程内缓存
	var cache settings.Cache
	redisCache, err := settings.NewRedisCache()
	if err != nil {
		log.Printf("Redis连接失败，设置缓存退化为进程内缓存: %v", err)
		cache = settings.NewMemoryCache()
	} else {
		cache = redisCache
	}
	GlobalSettingsService = settings.NewSettingsService(DB, cache)
	GlobalLeaseLock = settings.NewLeaseLock(GlobalSettingsService)

	GlobalEventService = event.NewEventService(DB, os.Getenv("DB_NOTIFY_LISTEN") == "true")
	if kafkaConnector := connectors.NewKafkaConnectorFromEnv(); kafkaConnector != nil {
		GlobalEventService.RegisterPublisher(kafkaConnector)
		log.Println("Kafka通知连接器已启用")
	}
	if mqttConnector, err := connectors.NewMQTTConnectorFromEnv(); err != nil {
		log.Printf("MQTT通知连接器启动失败: %v", err)
	} else if mqttConnector != nil {
		GlobalEventService.RegisterPublisher(mqttConnector)
		log.Println("MQTT通知连接器已启用")
	}

	GlobalVendorService = catalog.NewVendorService(DB)
	GlobalProductService = catalog.NewProductService(DB)
	GlobalProductGroupService = catalog.NewProductGroupService(DB)
	GlobalProductListService = catalog.NewProductListService(DB)
	GlobalMigrationService = migration.NewMigrationService(DB)
	GlobalNormalization = normalization.NewNormalizationService(DB)

	// 保存钩子链：产品保存 -> 迁移选项悬空替代重解析（单向，不回写产品）
	GlobalProductService.RegisterSaveHook(GlobalMigrationService.ResolveDanglingReplacements)

	GlobalEoxClient = eoxclient.NewEoxClient(GlobalSettingsService)
	GlobalSyncService = sync_engine.NewSyncService(
		DB,
		GlobalSettingsService,
		GlobalLeaseLock,
		GlobalEoxClient,
		GlobalVendorService,
		GlobalProductService,
		GlobalNormalization,
		GlobalMigrationService,
		GlobalEventService,
	)
	GlobalProductCheckService = product_check.NewProductCheckService(
		DB,
		GlobalProductService,
		GlobalProductListService,
		GlobalMigrationService,
		GlobalSettingsService,
		GlobalLeaseLock,
	)

	GlobalTaskRuntime = scheduler.NewTaskRuntime(DB)
	if err := GlobalTaskRuntime.RecoverOrphanedTasks(); err != nil {
		log.Printf("启动恢复遗留任务失败: %v", err)
	}

	GlobalCronScheduler = scheduler.NewCronScheduler(GlobalTaskRuntime, GlobalSettingsService, GlobalSyncService)
	if err := GlobalCronScheduler.Start(); err != nil {
		log.Fatalf("周期调度器启动失败: %v", err)
	}

	log.Println("所有服务初始化完成")
}
