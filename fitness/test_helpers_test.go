package fitness

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	Router  *gin.Engine
	Service *Service
	DB      *gorm.DB
	Clock   *health_fields.MockClock
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&health_fields.FitnessLink{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T, cfg health_fields.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	cfg.Defaults()

	clock := &health_fields.MockClock{Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	service := &Service{
		Db:     db,
		Config: cfg,
		Logger: logrus.New(),
		Clock:  clock,
		Client: &http.Client{Timeout: time.Second},
	}

	r := gin.New()
	// stand-in for the jwt middleware
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
	})
	r.GET("/fitness/connect", service.Connect)
	r.GET("/fitness/callback", service.Callback)
	r.POST("/fitness/sync", service.Sync)
	r.GET("/fitness/status", service.Status)

	return &testEnv{Router: r, Service: service, DB: db, Clock: clock}
}

func seedLink(t *testing.T, db *gorm.DB, link health_fields.FitnessLink) health_fields.FitnessLink {
	t.Helper()
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}
	return link
}

func int64Ptr(v int64) *int64 {
	return &v
}
