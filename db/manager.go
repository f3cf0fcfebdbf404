package db

import (
	"context"
	"fmt"

	"socialfeed/config"
	"socialfeed/logger"
	"socialfeed/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var ORM *gorm.DB

func dsnFromConfig(dbConf config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.Port, dbConf.User, dbConf.Password, dbConf.DBName,
	)
}

// FeedModels - таблицы, которые нужны ленте
func FeedModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Interest{},
		&models.UserInterest{},
		&models.Post{},
		&models.Follow{},
		&models.PostView{},
		&models.PostLike{},
		&models.PostComment{},
		&models.PostShare{},
	}
}

// ConnectDB открывает мастер и реплики и прогоняет миграции
func ConnectDB(conf *config.ConfigSchema) (*gorm.DB, error) {
	if ORM != nil {
		logger.Log.Info("ORM is already initialized")
		return ORM, nil
	}
	if conf == nil {
		return nil, fmt.Errorf("config is not loaded")
	}
	if conf.Databases.Master.Host == "" {
		return nil, fmt.Errorf("master database configuration is missing")
	}

	masterDSN := dsnFromConfig(conf.Databases.Master)
	replicaDSNs := make([]gorm.Dialector, 0, len(conf.Databases.Replicas))
	for _, r := range conf.Databases.Replicas {
		replicaDSNs = append(replicaDSNs, postgres.Open(dsnFromConfig(r)))
	}

	orm, err := gorm.Open(postgres.Open(masterDSN), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   false,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(replicaDSNs) > 0 {
		err = orm.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDSNs,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, err
		}
	}

	if err := Migrate(orm); err != nil {
		return nil, err
	}

	ORM = orm
	return orm, nil
}

// Migrate создает схему ленты (используется и в тестах на sqlite)
func Migrate(orm *gorm.DB) error {
	if err := orm.AutoMigrate(FeedModels()...); err != nil {
		return fmt.Errorf("failed to migrate feed schema: %w", err)
	}
	return CreateFeedIndexes(orm)
}

// ReadOnly возвращает подключение для чтения (реплики). Сессию можно переиспользовать
func ReadOnly(ctx context.Context, orm *gorm.DB) *gorm.DB {
	return orm.WithContext(ctx).Clauses(dbresolver.Read).Session(&gorm.Session{})
}

// Write возвращает подключение для записи (мастер)
func Write(ctx context.Context, orm *gorm.DB) *gorm.DB {
	return orm.WithContext(ctx).Clauses(dbresolver.Write).Session(&gorm.Session{})
}
