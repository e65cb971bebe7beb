package health_fields

// Config holds hridamrit system-level configuration. It is parsed from a
// JSON secrets file at boot, then filled with Defaults for anything unset.
type Config struct {
	Port         string `json:"port"`
	IsDebug      bool   `json:"is_debug"`
	DatabasePath string `json:"database_path"`
	JWTKey       string `json:"jwt_key"`
	RedisAddr    string `json:"redis_address"`

	// Google Fit OAuth app credentials. ClientID and ClientSecret are
	// deployment preconditions for the token exchange; the URLs only ever
	// change in tests.
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURL  string `json:"google_redirect_url"`
	GoogleAuthURL      string `json:"google_auth_url"`
	GoogleTokenURL     string `json:"google_token_url"`
	GoogleFitnessURL   string `json:"google_fitness_url"`

	// The deployed model server that actually runs the classifier.
	ModelBackendURL string `json:"model_backend_url"`

	// Twilio credentials for the SMS alert relay.
	TwilioAccountSID  string `json:"twilio_account_sid"`
	TwilioAuthToken   string `json:"twilio_auth_token"`
	TwilioPhoneNumber string `json:"twilio_phone_number"`
	TwilioBaseURL     string `json:"twilio_base_url"`

	// AppURL is where the SPA lives; the OAuth callback redirects back to
	// it with the authorization code stripped.
	AppURL string `json:"app_url"`
}

// Defaults fills zero-valued fields with sensible defaults.
func (c *Config) Defaults() {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "hridamrit.db"
	}
	if c.GoogleAuthURL == "" {
		c.GoogleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if c.GoogleTokenURL == "" {
		c.GoogleTokenURL = "https://oauth2.googleapis.com/token"
	}
	if c.GoogleFitnessURL == "" {
		c.GoogleFitnessURL = "https://www.googleapis.com/fitness/v1"
	}
	if c.TwilioBaseURL == "" {
		c.TwilioBaseURL = "https://api.twilio.com/2010-04-01"
	}
	if c.ModelBackendURL == "" {
		c.ModelBackendURL = "http://localhost:5000"
	}
	if c.AppURL == "" {
		c.AppURL = "/dashboard"
	}
}
