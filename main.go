package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/alerts"
	"github.com/hridamrit/hridamrit/fitness"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/hridamrit/hridamrit/predictions"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var logrusLogger = logrus.New()

func main() {
	// .env is optional; deployments usually inject the environment directly
	if err := godotenv.Load(); err != nil {
		logrusLogger.Printf(".env not loaded: %v", err)
	}

	logrusLogger.SetLevel(logrus.InfoLevel)
	logrusLogger.SetReportCaller(true)
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})

	var config health_fields.Config
	if err := parseConfig(&config); err != nil {
		logrusLogger.Fatalf("could not parse config: %v", err)
	}
	if config.IsDebug {
		logrusLogger.SetLevel(logrus.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(sqlite.Open(config.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logrusLogger.Fatalf("could not open database %q: %v", config.DatabasePath, err)
	}
	if err := db.AutoMigrate(
		&health_fields.User{},
		&health_fields.FitnessLink{},
		&health_fields.PredictionRecord{},
		&health_fields.AlertSettings{},
	); err != nil {
		logrusLogger.Fatalf("could not migrate database: %v", err)
	}

	var redisClient *redis.Client
	if config.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	}

	jwtAuth = gateway.JWTAuth{Config: config}
	jwtAuth.Init()

	authService = gateway.AuthService{
		Db:     db,
		Redis:  redisClient,
		Config: config,
		Logger: logrusLogger,
		Auth:   &jwtAuth,
	}
	fitnessService = fitness.Service{
		Db:     db,
		Config: config,
		Logger: logrusLogger,
	}
	predictionService = predictions.Service{
		Db:     db,
		Config: config,
		Logger: logrusLogger,
	}
	alertService = alerts.Service{
		Db:     db,
		Config: config,
		Logger: logrusLogger,
		Redis:  redisClient,
	}

	port := config.Port
	if p := os.Getenv("PORT"); p != "" {
		port = ":" + p
	}
	logrusLogger.Fatal(GetMainEngine().Run(port))
}
