package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

// DefaultFREDURL is the St. Louis Fed API host.
const DefaultFREDURL = "https://api.stlouisfed.org"

// FREDFetcher implements MacroFetcher using the FRED REST API.
type FREDFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Retry   RetryPolicy
	log     logrus.FieldLogger
}

// NewFREDFetcher creates a FRED client. An empty API key is rejected here so
// that no request is ever sent without one.
func NewFREDFetcher(baseURL, apiKey, proxyURL string, log logrus.FieldLogger) (*FREDFetcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: FRED_API_KEY is required", model.ErrConfiguration)
	}
	if baseURL == "" {
		baseURL = DefaultFREDURL
	}
	return &FREDFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Retry:   DefaultRetry,
		log:     logging.Component(log, "fred"),
	}, nil
}

func (f *FREDFetcher) Name() string { return "fred" }

type fredObservations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

type fredError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

// FetchSeries returns every observation of seriesID in date order. Values
// FRED reports as "." are returned as NaN.
func (f *FREDFetcher) FetchSeries(ctx context.Context, seriesID string) ([]model.RawPoint, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("%w: FRED_API_KEY is required", model.ErrConfiguration)
	}
	var body []byte
	err := f.Retry.do(ctx, f.log, "fred "+seriesID, func() error {
		var err error
		body, err = f.get(ctx, seriesID)
		return err
	})
	if err != nil {
		return nil, &model.FetchError{Source: f.Name(), Series: seriesID, Err: err}
	}
	points, err := parseFREDObservations(body)
	if err != nil {
		return nil, &model.FetchError{Source: f.Name(), Series: seriesID, Err: err}
	}
	f.log.Debugf("fetched %d observations for %s", len(points), seriesID)
	return points, nil
}

func (f *FREDFetcher) get(ctx context.Context, seriesID string) ([]byte, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", f.APIKey)
	q.Set("file_type", "json")
	u := f.BaseURL + "/fred/series/observations?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, permanent(err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred fetch: %w", redactKey(err, f.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fred read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		var fe fredError
		if json.Unmarshal(body, &fe) == nil && fe.Message != "" {
			msg = fe.Message
		}
		err := fmt.Errorf("fred: status %d: %s", resp.StatusCode, msg)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}
	return body, nil
}

func parseFREDObservations(body []byte) ([]model.RawPoint, error) {
	var obs fredObservations
	if err := json.Unmarshal(body, &obs); err != nil {
		return nil, fmt.Errorf("fred decode: %w", err)
	}
	if len(obs.Observations) == 0 {
		return nil, errors.New("fred: no observations returned")
	}
	points := make([]model.RawPoint, 0, len(obs.Observations))
	for _, o := range obs.Observations {
		t, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return nil, fmt.Errorf("fred: bad date %q: %w", o.Date, err)
		}
		v := math.NaN()
		if s := strings.TrimSpace(o.Value); s != "" && s != "." {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("fred: bad value %q on %s: %w", o.Value, o.Date, err)
			}
			v = d.InexactFloat64()
		}
		points = append(points, model.RawPoint{Time: t, Value: v})
	}
	return points, nil
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
