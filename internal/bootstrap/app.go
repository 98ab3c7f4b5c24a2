package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/config"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/model"
	mysqlClient "github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/platform/mysql"
	rabbitmqClient "github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/platform/rabbitmq"
	redisClient "github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/platform/redis"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/repository"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/vision"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/worker"
)

type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Classifier   *vision.Classifier
	RecordWorker *worker.RecordPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Station{}, &model.PredictionRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Screening.ArchiveDir != "" {
		if err := os.MkdirAll(cfg.Screening.ArchiveDir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir failed: %w", err)
		}
	}

	// The model loads lazily on the first prediction, so startup succeeds
	// even when the runtime library or model file is still missing.
	classifier := vision.NewClassifier(cfg.Model.Path, cfg.Model.ONNXSharedLibPath, cfg.Model.Labels)

	predictionRepo := repository.NewPredictionRepository(mysqlDB)
	recordWorker := worker.NewRecordPersistWorker(mqConn, predictionRepo, cfg.RabbitMQ.RecordPersistQueue)
	if err := recordWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start record worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Classifier:   classifier,
		RecordWorker: recordWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.RecordWorker != nil {
		a.RecordWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Classifier != nil {
		if err := a.Classifier.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
