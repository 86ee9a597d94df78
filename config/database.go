package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"crm/logger"
	"crm/repository"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// MySQLDSN builds the driver DSN. Times are read and written in loc.
func (c *Config) MySQLDSN(loc *time.Location) string {
	dsn := mysql.NewConfig()
	dsn.User = c.MySQL.User
	dsn.Passwd = c.MySQL.Password
	dsn.Net = "tcp"
	dsn.Addr = c.MySQL.Host + ":" + strconv.Itoa(c.MySQL.Port)
	dsn.DBName = c.MySQL.Database
	dsn.ParseTime = true
	dsn.Loc = loc
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

func ConnectMySQL(cfg *Config, loc *time.Location) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(cfg.MySQLDSN(loc)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().In(loc)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	logger.L().WithField("addr", cfg.MySQL.Host).Info("connected to MySQL")
	return db, nil
}

func ConnectMongo(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.L().WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")
	return client, nil
}

// OpenStore connects the backend selected by StoreDriver and prepares its
// schema.
func OpenStore(cfg *Config, loc *time.Location) (repository.Store, error) {
	var store repository.Store
	switch cfg.StoreDriver {
	case DriverMySQL:
		db, err := ConnectMySQL(cfg, loc)
		if err != nil {
			return nil, err
		}
		store = repository.NewMySQLStore(db)
	case DriverMongo:
		client, err := ConnectMongo(cfg)
		if err != nil {
			return nil, err
		}
		store = repository.NewMongoStore(client, cfg.Mongo.Database)
	case DriverMemory:
		logger.L().Warn("using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
