package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/alerts"
	"github.com/hridamrit/hridamrit/fitness"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/hridamrit/hridamrit/predictions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// parseConfig loads the secrets file named by HRIDAMRIT_CONFIG (default
// .secrets.json), then lets a handful of env vars override individual
// credentials so deployments can keep secrets out of the file entirely.
func parseConfig(data *health_fields.Config) error {
	path := os.Getenv("HRIDAMRIT_CONFIG")
	if path == "" {
		path = ".secrets.json"
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(raw, data); err != nil {
			logrusLogger.Printf("error in parsing config file: %v", err)
			return err
		}
	} else {
		logrusLogger.Printf("config file not read, relying on env and defaults: %v", err)
	}

	envOverride(&data.GoogleClientID, "GOOGLE_CLIENT_ID")
	envOverride(&data.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	envOverride(&data.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
	envOverride(&data.ModelBackendURL, "PYTHON_BACKEND_URL")
	envOverride(&data.TwilioAccountSID, "TWILIO_ACCOUNT_SID")
	envOverride(&data.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	envOverride(&data.TwilioPhoneNumber, "TWILIO_PHONE_NUMBER")
	envOverride(&data.JWTKey, "JWT_KEY")

	data.Defaults()
	return nil
}

func envOverride(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

// GetMainEngine wires every service and route into one gin engine.
func GetMainEngine() *gin.Engine {
	route := gin.Default()
	route.HandleMethodNotAllowed = true
	route.Use(gateway.RequestID())
	route.Use(gateway.RequestLogger(logrusLogger, gateway.LogSamplingConfig{}))
	route.Use(gateway.Instrumentation())

	route.POST("/register", authService.CreateUser)
	route.POST("/login", authService.LoginHandler)
	route.GET("/metrics", gin.WrapH(promhttp.Handler()))

	content := route.Group("/content")
	{
		content.GET("/precautions", predictions.Precautions)
		content.GET("/recommendations", predictions.Recommendations)
	}

	auth := route.Group("/", jwtAuth.AuthMiddleware())
	{
		auth.GET("/auth/me", authService.Me)

		auth.GET("/fitness/connect", fitnessService.Connect)
		auth.GET("/fitness/callback", fitnessService.Callback)
		auth.POST("/fitness/sync", fitnessService.Sync)
		auth.GET("/fitness/status", fitnessService.Status)

		auth.POST("/predict", predictionService.Predict)
		auth.GET("/predictions", predictionService.History)
		auth.GET("/predictions/latest", predictionService.Latest)

		auth.GET("/alerts/settings", alertService.GetSettings)
		auth.POST("/alerts/settings", alertService.SaveSettings)
		auth.POST("/alerts/test", alertService.TestAlert)
		auth.POST("/alerts/verify", alertService.RequestVerification)
		auth.POST("/alerts/verify/confirm", alertService.ConfirmVerification)
	}

	return route
}

var (
	authService       gateway.AuthService
	fitnessService    fitness.Service
	predictionService predictions.Service
	alertService      alerts.Service
	jwtAuth           gateway.JWTAuth
)

func init() {
	binding.Validator = new(health_fields.DefaultValidator)
}
