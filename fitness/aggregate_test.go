package fitness

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/health_fields"
)

func datasetBody(points ...dataPoint) string {
	raw, _ := json.Marshal(dataset{Point: points})
	return string(raw)
}

func fpPoint(v float64) dataPoint {
	return dataPoint{Value: []dataValue{{FpVal: v}}}
}

func intPoint(v int64) dataPoint {
	return dataPoint{Value: []dataValue{{IntVal: v}}}
}

func TestService_FetchSamples(t *testing.T) {
	var datasetIDs []string
	fitServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("authorization = %q", got)
		}
		parts := strings.Split(r.URL.Path, "/")
		datasetIDs = append(datasetIDs, parts[len(parts)-1])

		switch {
		case strings.Contains(r.URL.Path, "com.google.weight"):
			fmt.Fprint(w, datasetBody(fpPoint(71.2), fpPoint(72.6)))
		case strings.Contains(r.URL.Path, "com.google.height"):
			fmt.Fprint(w, datasetBody(fpPoint(1.754)))
		case strings.Contains(r.URL.Path, "step_count"):
			fmt.Fprint(w, datasetBody(intPoint(4200), intPoint(3100), intPoint(250)))
		case strings.Contains(r.URL.Path, "calories"):
			fmt.Fprint(w, datasetBody(fpPoint(1800.4), fpPoint(2100.3)))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fitServer.Close)

	env := newTestEnv(t, health_fields.Config{GoogleFitnessURL: fitServer.URL})

	samples, err := env.Service.FetchSamples(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("fetch samples: %v", err)
	}

	// last point wins for weight, rounded
	if samples.Weight == nil || *samples.Weight != 73 {
		t.Errorf("weight = %v, want 73", samples.Weight)
	}
	// meters become rounded centimeters
	if samples.Height == nil || *samples.Height != 175 {
		t.Errorf("height = %v, want 175", samples.Height)
	}
	if samples.Steps != 7550 {
		t.Errorf("steps = %d, want 7550", samples.Steps)
	}
	if samples.Calories != 3901 {
		t.Errorf("calories = %d, want 3901", samples.Calories)
	}

	end := env.Clock.Timestamp
	start := end.Add(-sampleWindow)
	wantID := fmt.Sprintf("%d-%d", start.UnixNano(), end.UnixNano())
	if len(datasetIDs) != 4 {
		t.Fatalf("dataset calls = %d, want 4", len(datasetIDs))
	}
	for _, id := range datasetIDs {
		if id != wantID {
			t.Errorf("dataset id = %q, want %q", id, wantID)
		}
	}
}

func TestService_FetchSamples_emptySeries(t *testing.T) {
	fitServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, datasetBody())
	}))
	t.Cleanup(fitServer.Close)

	env := newTestEnv(t, health_fields.Config{GoogleFitnessURL: fitServer.URL})

	samples, err := env.Service.FetchSamples(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("fetch samples: %v", err)
	}
	if samples.Height != nil || samples.Weight != nil {
		t.Errorf("height/weight should be nil on empty series, got %v/%v", samples.Height, samples.Weight)
	}
	if samples.Steps != 0 || samples.Calories != 0 {
		t.Errorf("steps/calories should be zero, got %d/%d", samples.Steps, samples.Calories)
	}
}

func TestService_FetchSamples_emptyToken(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	_, err := env.Service.FetchSamples(context.Background(), "")
	if apperr.Code(err) != "validation_error" {
		t.Errorf("code = %q, want validation_error", apperr.Code(err))
	}
}

func TestService_FetchSamples_partialFailure(t *testing.T) {
	fitServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "step_count") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, datasetBody(fpPoint(70)))
	}))
	t.Cleanup(fitServer.Close)

	env := newTestEnv(t, health_fields.Config{GoogleFitnessURL: fitServer.URL})

	_, err := env.Service.FetchSamples(context.Background(), "token-1")
	if apperr.Code(err) != "upstream_error" {
		t.Errorf("code = %q, want upstream_error", apperr.Code(err))
	}
}
