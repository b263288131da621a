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
	"sort"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"MacroDash/internal/calculator"
	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

// DefaultYahooURL is the public Yahoo Finance API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements PriceFetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Retry   RetryPolicy
	Now     func() time.Time
	log     logrus.FieldLogger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, log logrus.FieldLogger) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
		Retry:   DefaultRetry,
		Now:     time.Now,
		log:     logging.Component(log, "yahoo"),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Nullable series use pointers so gaps are not mistaken for zero prices.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooMeta struct {
	Symbol               string `json:"symbol"`
	GMTOffset            int64  `json:"gmtoffset"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
}

// location returns the exchange's time zone. gmtoffset is only the offset
// at request time, so it is a fallback for responses without a zone name.
func (m yahooMeta) location() *time.Location {
	if m.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(m.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", int(m.GMTOffset))
}

// FetchMonthly returns month-end adjusted closes from start to now with
// monthly returns filled in. Bars are keyed by the month they open in, in the
// exchange's time zone; a month reported twice keeps its last usable bar. A
// month with a null close is kept as NaN so the returns on both sides of it
// come out undefined.
func (f *YahooFetcher) FetchMonthly(ctx context.Context, symbol string, start time.Time) ([]model.PriceObservation, error) {
	var body []byte
	err := f.Retry.do(ctx, f.log, "yahoo "+symbol, func() error {
		var err error
		body, err = f.get(ctx, symbol, start)
		return err
	})
	if err != nil {
		return nil, &model.FetchError{Source: f.Name(), Series: symbol, Err: err}
	}

	obs, err := parseYahooMonthly(body)
	if err != nil {
		return nil, &model.FetchError{Source: f.Name(), Series: symbol, Err: err}
	}
	calculator.ApplyMonthlyReturns(obs)
	f.log.Debugf("fetched %d monthly bars for %s", len(obs), symbol)
	return obs, nil
}

func (f *YahooFetcher) get(ctx context.Context, symbol string, start time.Time) ([]byte, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(f.Now().Unix(), 10))
	q.Set("interval", "1mo")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, permanent(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}
	return body, nil
}

func parseYahooMonthly(body []byte) ([]model.PriceObservation, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errors.New("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("yahoo: %d timestamps but %d closes", len(result.Timestamp), len(closes))
	}

	loc := result.Meta.location()
	byMonth := make(map[time.Time]model.PriceObservation, len(closes))
	usable := 0
	for i, ts := range result.Timestamp {
		c := math.NaN()
		if p := closes[i]; p != nil && *p > 0 {
			c = *p
			usable++
		}
		local := time.Unix(ts, 0).In(loc)
		if local.Hour() == 23 {
			// bars open at local midnight; a fixed offset can land them an hour early
			local = local.Add(time.Hour)
		}
		m := calculator.MonthEnd(local)
		if prev, ok := byMonth[m]; ok && math.IsNaN(c) && !math.IsNaN(prev.AdjClose) {
			continue
		}
		byMonth[m] = model.PriceObservation{Time: m, AdjClose: c}
	}
	if usable == 0 {
		return nil, errors.New("yahoo: no usable closes")
	}

	obs := make([]model.PriceObservation, 0, len(byMonth))
	for _, o := range byMonth {
		obs = append(obs, o)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Time.Before(obs[j].Time) })
	return obs, nil
}
