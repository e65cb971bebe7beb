package alerts

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	Router  *gin.Engine
	Service *Service
	DB      *gorm.DB
}

func newTestEnv(t *testing.T, cfg health_fields.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	binding.Validator = new(health_fields.DefaultValidator)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&health_fields.AlertSettings{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	service := &Service{
		Db:     db,
		Config: cfg,
		Logger: logrus.New(),
		Client: &http.Client{Timeout: time.Second},
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
	})
	r.GET("/alerts/settings", service.GetSettings)
	r.POST("/alerts/settings", service.SaveSettings)
	r.POST("/alerts/test", service.TestAlert)
	r.POST("/alerts/verify", service.RequestVerification)

	return &testEnv{Router: r, Service: service, DB: db}
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestService_SaveSettings(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	w := postJSON(t, env.Router, "/alerts/settings", map[string]any{
		"phone_number":    "+919876543210",
		"high_heart_rate": true,
		"daily_reminder":  true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// saving again replaces the row instead of adding one
	w = postJSON(t, env.Router, "/alerts/settings", map[string]any{
		"phone_number": "+919876543210",
		"abnormal_bp":  true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("second save status = %d, body %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&health_fields.AlertSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	var settings health_fields.AlertSettings
	if err := env.DB.Where("user_id = ?", 1).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !settings.AbnormalBP || settings.HighHeartRate {
		t.Errorf("toggles not replaced: %+v", settings)
	}
}

func TestService_SaveSettings_invalidPhone(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	w := postJSON(t, env.Router, "/alerts/settings", map[string]any{
		"phone_number": "not-a-number",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestService_SaveSettings_newNumberResetsVerified(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	seed := health_fields.AlertSettings{UserID: 1, PhoneNumber: "+911111111111", PhoneVerified: true}
	if err := env.DB.Create(&seed).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	w := postJSON(t, env.Router, "/alerts/settings", map[string]any{
		"phone_number": "+922222222222",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var settings health_fields.AlertSettings
	if err := env.DB.Where("user_id = ?", 1).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.PhoneVerified {
		t.Error("phone still marked verified after the number changed")
	}
}

func TestService_TestAlert(t *testing.T) {
	var gotBody, gotTo string
	var gotAuth bool
	twilio := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/Accounts/sid-1/Messages.json") {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "sid-1" && pass == "token-1"
		r.ParseForm()
		gotBody = r.PostFormValue("Body")
		gotTo = r.PostFormValue("To")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123"}`))
	}))
	t.Cleanup(twilio.Close)

	env := newTestEnv(t, health_fields.Config{
		TwilioAccountSID:  "sid-1",
		TwilioAuthToken:   "token-1",
		TwilioPhoneNumber: "+10000000000",
		TwilioBaseURL:     twilio.URL,
	})
	seed := health_fields.AlertSettings{UserID: 1, PhoneNumber: "+919876543210"}
	if err := env.DB.Create(&seed).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	w := postJSON(t, env.Router, "/alerts/test", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !gotAuth {
		t.Error("twilio basic auth not sent")
	}
	if gotTo != "+919876543210" {
		t.Errorf("to = %q", gotTo)
	}
	want := "Hridamrit Alert - Test: " + testAlertBody
	if gotBody != want {
		t.Errorf("body = %q, want %q", gotBody, want)
	}
	if !strings.Contains(w.Body.String(), "SM123") {
		t.Errorf("response missing message sid: %s", w.Body.String())
	}
}

func TestService_TestAlert_noSettings(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{
		TwilioAccountSID:  "sid-1",
		TwilioAuthToken:   "token-1",
		TwilioPhoneNumber: "+10000000000",
	})

	w := postJSON(t, env.Router, "/alerts/test", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestService_TestAlert_unconfigured(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})
	seed := health_fields.AlertSettings{UserID: 1, PhoneNumber: "+919876543210"}
	if err := env.DB.Create(&seed).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	w := postJSON(t, env.Router, "/alerts/test", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "configuration_error") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestService_RequestVerification_noRedis(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	w := postJSON(t, env.Router, "/alerts/verify", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
