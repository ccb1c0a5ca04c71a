package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const defaultBackoffBase = 200 * time.Millisecond

// HTTPProvider читает расписания из внешнего JSON API
type HTTPProvider struct {
	baseURL     string
	httpClient  *http.Client
	retries     uint64
	backoffBase time.Duration
	logger      *zap.Logger
}

type Option func(*HTTPProvider)

// WithBackoffBase задаёт начальную задержку экспоненциального backoff
func WithBackoffBase(base time.Duration) Option {
	return func(p *HTTPProvider) {
		p.backoffBase = base
	}
}

func NewHTTPProvider(baseURL string, httpClient *http.Client, retries uint64, logger *zap.Logger, opts ...Option) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		retries:     retries,
		backoffBase: defaultBackoffBase,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func DefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Entries получает перечень опубликованных недель потока
func (p *HTTPProvider) Entries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	url := fmt.Sprintf("%s/%s/entries", p.baseURL, year)
	if err := p.getJSON(ctx, url, &entries); err != nil {
		return nil, fmt.Errorf("list entries for %s: %w", year, err)
	}

	for i := range entries {
		if entries[i].Year == "" {
			entries[i].Year = year
		}
	}
	return entries, nil
}

// Timetable получает расписание недели напрямую из источника
func (p *HTTPProvider) Timetable(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	var timetable model.Timetable
	url := fmt.Sprintf("%s/%s/%d", p.baseURL, entry.Year, entry.WeekNumber)
	if err := p.getJSON(ctx, url, &timetable); err != nil {
		return nil, fmt.Errorf("fetch timetable %s: %w", entry.Key(), err)
	}

	if timetable.Header.Year == "" {
		timetable.Header.Year = entry.Year
	}
	if timetable.Header.WeekNumber == 0 {
		timetable.Header.WeekNumber = entry.WeekNumber
	}
	return &timetable, nil
}

// getJSON выполняет GET с повторами на сетевые ошибки, 5xx и 429
func (p *HTTPProvider) getJSON(ctx context.Context, url string, out any) error {
	backoff := retry.WithMaxRetries(p.retries, retry.NewExponential(p.backoffBase))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := p.doGet(ctx, url, out)
		if err == nil {
			return nil
		}
		var status *statusError
		if errors.Is(err, model.ErrNotFound) || (errors.As(err, &status) && !status.retryable()) {
			return err
		}
		p.logger.Debug("Upstream request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return retry.RetryableError(err)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
}

func (p *HTTPProvider) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// continue
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrNotFound, url)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream unexpected status: %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}
