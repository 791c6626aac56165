package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"github.com/dalemusser/stratasite/internal/app/system/mailer"
	"github.com/dalemusser/stratasite/internal/app/system/seeding"
	"github.com/dalemusser/stratasite/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB, the image store and the mailer.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	pool := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		pool.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		pool.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return DBDeps{}, err
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", pool.MaxPoolSize),
		zap.Uint64("min_pool_size", pool.MinPoolSize))

	files, err := newFileStorage(ctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		FileStorage:   files,
		Mailer:        newMailer(appCfg, logger),
	}, nil
}

// newFileStorage picks the image backend. Local storage is served by the
// /images route; S3 objects are read back through the store.
func newFileStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local", "":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("local image storage: %w", err)
		}
		logger.Info("images stored on disk", zap.String("path", appCfg.StorageLocalPath))
		return store, nil
	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 image storage: %w", err)
		}
		logger.Info("images stored in S3",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", appCfg.StorageType)
	}
}

func newMailer(appCfg AppConfig, logger *zap.Logger) mailer.Sender {
	m := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	if m.Enabled() {
		logger.Info("SMTP notifications enabled",
			zap.String("host", appCfg.MailSMTPHost),
			zap.Int("port", appCfg.MailSMTPPort))
	} else {
		logger.Warn("no SMTP host configured; contact and reservation notifications are disabled")
	}
	return m
}

// EnsureSchema creates collections and validators, then indexes, then seeds
// default content when seed_content is on. Seeding never overwrites.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collections and validators", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("indexes", zap.Error(err))
		return err
	}
	if !appCfg.SeedContent {
		logger.Info("schema ensured; content seeding disabled")
		return nil
	}

	rep, err := seeding.SeedAll(ctx, db, logger)
	if err != nil {
		logger.Error("seed default content", zap.Error(err))
		return err
	}
	logger.Info("schema ensured and content seeded", zap.Any("report", rep))
	return nil
}
