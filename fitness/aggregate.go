package fitness

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
)

// The four derived data sources queried per sync. Each is independent of
// the others.
const (
	weightSource   = "derived:com.google.weight:com.google.android.gms:merge_weight"
	heightSource   = "derived:com.google.height:com.google.android.gms:merge_height"
	stepsSource    = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"
	caloriesSource = "derived:com.google.calories.expended:com.google.android.gms:merge_calories_expended"
)

// Samples holds the reduced summary of one trailing window. Height and
// weight are last-value reads and stay nil on an empty series; steps and
// calories are sums and default to zero. The asymmetry is deliberate.
type Samples struct {
	Height   *int64 `json:"height"` // centimeters
	Weight   *int64 `json:"weight"` // kilograms
	Steps    int64  `json:"steps"`
	Calories int64  `json:"calories"`
}

type dataset struct {
	Point []dataPoint `json:"point"`
}

type dataPoint struct {
	Value []dataValue `json:"value"`
}

type dataValue struct {
	IntVal int64   `json:"intVal"`
	FpVal  float64 `json:"fpVal"`
}

// FetchSamples queries the four data sources over the trailing 7-day window
// and reduces each to a single value. A failure on any fetch fails the whole
// aggregation; partial results are never returned.
func (s *Service) FetchSamples(ctx context.Context, accessToken string) (Samples, error) {
	var samples Samples

	if accessToken == "" {
		return samples, apperr.WithMessage(apperr.ErrValidation, "access token is required")
	}

	// dataset ids are nanosecond ranges
	end := s.clock().Now()
	start := end.Add(-sampleWindow)
	datasetID := fmt.Sprintf("%d-%d", start.UnixNano(), end.UnixNano())

	weightData, err := s.fetchDataset(ctx, accessToken, weightSource, "weight", datasetID)
	if err != nil {
		return samples, err
	}
	heightData, err := s.fetchDataset(ctx, accessToken, heightSource, "height", datasetID)
	if err != nil {
		return samples, err
	}
	stepsData, err := s.fetchDataset(ctx, accessToken, stepsSource, "steps", datasetID)
	if err != nil {
		return samples, err
	}
	caloriesData, err := s.fetchDataset(ctx, accessToken, caloriesSource, "calories", datasetID)
	if err != nil {
		return samples, err
	}

	// The provider lists points oldest first; the last element is taken as
	// the most recent sample. That ordering is the provider's convention
	// and is not re-verified here.
	if v, ok := lastValue(weightData); ok {
		w := int64(math.Round(v))
		samples.Weight = &w
	}
	if v, ok := lastValue(heightData); ok {
		// meters to centimeters at this boundary
		h := int64(math.Round(v * 100))
		samples.Height = &h
	}
	for _, p := range stepsData.Point {
		if len(p.Value) > 0 {
			samples.Steps += p.Value[0].IntVal
		}
	}
	var calories float64
	for _, p := range caloriesData.Point {
		if len(p.Value) > 0 {
			calories += p.Value[0].FpVal
		}
	}
	samples.Calories = int64(math.Round(calories))

	return samples, nil
}

func (s *Service) fetchDataset(ctx context.Context, accessToken, source, name, datasetID string) (dataset, error) {
	var data dataset

	url := fmt.Sprintf("%s/users/me/dataSources/%s/datasets/%s", s.Config.GoogleFitnessURL, source, datasetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return data, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	begin := time.Now()
	resp, err := s.httpClient().Do(req)
	if err != nil {
		health_fields.RecordUpstream("google_fit", name, http.MethodGet, 0, err, time.Since(begin))
		return data, apperr.Wrap(err, apperr.ErrUpstream, "failed to fetch fitness data")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	health_fields.RecordUpstream("google_fit", name, http.MethodGet, resp.StatusCode, nil, time.Since(begin))

	if resp.StatusCode/100 != 2 {
		s.Logger.WithFields(logrus.Fields{
			"source": source,
			"status": resp.Status,
			"body":   string(body),
		}).Error("google fit dataset fetch failed")
		return data, apperr.WithMessage(apperr.ErrUpstream, "failed to fetch fitness data")
	}

	if err := json.Unmarshal(body, &data); err != nil {
		return data, apperr.Wrap(err, apperr.ErrUpstream, "could not decode fitness data")
	}
	return data, nil
}

func lastValue(data dataset) (float64, bool) {
	if len(data.Point) == 0 {
		return 0, false
	}
	last := data.Point[len(data.Point)-1]
	if len(last.Value) == 0 {
		return 0, false
	}
	return last.Value[0].FpVal, true
}
