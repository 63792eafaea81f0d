package bootstrap

import (
	"go_procure_backend/config"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/cache"
	"go_procure_backend/platform/database"
	"go_procure_backend/platform/logbus"
	"go_procure_backend/platform/redis"
	"go_procure_backend/platform/storage"
)

type Infrastructure struct {
	DB      *database.DB
	Redis   *redis.Service
	Storage *storage.Service
	Cache   cache.Service
	LogBus  *logbus.Bus
}

func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{}

	// database
	db, err := database.InitPostgres(cfg)
	if err != nil {
		return nil, err
	}
	infra.DB = db
	if err := infra.DB.AutoMigrate(); err != nil {
		return nil, err
	}

	// redis is optional; the split cache degrades to in-memory only
	redisService, err := redis.InitRedis(cfg)
	if err != nil {
		logging.Logger.Warn("redis unavailable, running with in-memory cache only", "error", err)
		redisService = nil
	}
	infra.Redis = redisService

	// object storage is optional; uploads are simply not archived
	storageService, err := storage.InitStorageService(cfg)
	if err != nil {
		logging.Logger.Warn("object storage unavailable, upload archiving disabled", "error", err)
		storageService = nil
	}
	infra.Storage = storageService

	infra.Cache = cache.NewService(redisService)
	infra.LogBus = logbus.NewBus()

	return infra, nil
}

func (infra *Infrastructure) Shutdown() error {
	if err := infra.DB.Close(); err != nil {
		logging.Logger.Error("fail closing database", "error", err)
		return err
	}
	if infra.Redis != nil {
		if err := infra.Redis.Close(); err != nil {
			logging.Logger.Error("fail closing redis", "error", err)
			return err
		}
	}
	return nil
}
