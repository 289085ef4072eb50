package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"wanderlog/internal/cache"
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/observability"

	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	countriesService = "restcountries"
	countryFields    = "name,currencies,capital,languages,flags"
	maxCountryBody   = 8 << 20
)

var errCountryNotFound = errors.New("country not found")

// CountryService reads reference data about countries from the REST
// Countries API. Listings are cached; upstream failures open a breaker.
type CountryService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	cb      *gobreaker.CircuitBreaker[[]models.Country]
}

// CountryOptions configures the upstream client.
type CountryOptions struct {
	BaseURL string
	Timeout time.Duration
	// Client overrides the HTTP client.
	Client *http.Client
}

func NewCountryService(opts CountryOptions, c *cache.Cache) *CountryService {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	observability.CircuitBreakerState.WithLabelValues(countriesService).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]models.Country](gobreaker.Settings{
		Name:        countriesService,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An unknown country is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCountryNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			middleware.Logger.Info("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			observability.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
		},
	})

	return &CountryService{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		cache:   c,
		cb:      cb,
	}
}

// All returns every country, sorted by name.
func (s *CountryService) All(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	err := s.cache.Aside(ctx, cache.FamilyCountry, cache.CountriesKey, &countries, cache.CountryTTL, func() error {
		var err error
		countries, err = s.fetch(ctx, "all", "/all")
		return err
	})
	if err != nil {
		return nil, s.classify(err, "")
	}
	return countries, nil
}

// ByName returns the first country matching name.
func (s *CountryService) ByName(ctx context.Context, name string) (*models.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Country name is required")
	}

	var matches []models.Country
	err := s.cache.Aside(ctx, cache.FamilyCountry, cache.CountryKey(name), &matches, cache.CountryTTL, func() error {
		var err error
		matches, err = s.fetch(ctx, "by_name", "/name/"+url.PathEscape(name))
		return err
	})
	if err != nil {
		return nil, s.classify(err, name)
	}
	if len(matches) == 0 {
		return nil, models.NewNotFoundError("Country", name)
	}
	return &matches[0], nil
}

func (s *CountryService) classify(err error, name string) error {
	if errors.Is(err, errCountryNotFound) {
		return models.NewNotFoundError("Country", name)
	}
	return models.NewUpstreamError("Country data", err)
}

func (s *CountryService) fetch(ctx context.Context, operation, path string) ([]models.Country, error) {
	ctx, span := observability.StartClientSpan(ctx, countriesService, operation)
	start := time.Now()

	countries, err := s.cb.Execute(func() ([]models.Country, error) {
		return s.get(ctx, path)
	})

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case errors.Is(err, errCountryNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "failure"
	}
	observability.ObserveUpstream(countriesService, outcome, start)
	observability.EndSpan(span, err)

	if err != nil && outcome != "not_found" {
		middleware.Logger.WarnContext(ctx, "country lookup failed",
			slog.String("operation", operation),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
	}
	return countries, err
}

func (s *CountryService) get(ctx context.Context, path string) ([]models.Country, error) {
	endpoint := s.baseURL + path + "?fields=" + countryFields
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errCountryNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []upstreamCountry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCountryBody)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	countries := make([]models.Country, 0, len(raw))
	for _, rc := range raw {
		countries = append(countries, rc.flatten())
	}
	if path == "/all" {
		sort.Slice(countries, func(i, j int) bool { return countries[i].Name < countries[j].Name })
	}
	return countries, nil
}

type upstreamCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Currencies map[string]struct {
		Name string `json:"name"`
	} `json:"currencies"`
	Capital   []string          `json:"capital"`
	Languages map[string]string `json:"languages"`
	Flags     struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
	} `json:"flags"`
}

func (rc upstreamCountry) flatten() models.Country {
	c := models.Country{Name: rc.Name.Common, Languages: []string{}}

	codes := make([]string, 0, len(rc.Currencies))
	for code := range rc.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	if len(codes) > 0 {
		c.Currency = rc.Currencies[codes[0]].Name
	}

	if len(rc.Capital) > 0 {
		c.Capital = rc.Capital[0]
	}
	for _, lang := range rc.Languages {
		c.Languages = append(c.Languages, lang)
	}
	sort.Strings(c.Languages)

	c.Flag = rc.Flags.PNG
	if c.Flag == "" {
		c.Flag = rc.Flags.SVG
	}
	return c
}

func breakerGauge(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
