package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

// APIClient клиент HTTP API кэша расписаний
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func DefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// APIError ответ API с success=false
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Unwrap сопоставляет статус ответа с ошибками model
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return model.ErrInvalidParameter
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return model.ErrSourceUnavailable
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Timetable получает расписание недели потока
func (c *APIClient) Timetable(ctx context.Context, year model.CohortYear, weekNumber int) (*model.Timetable, error) {
	var timetable model.Timetable
	if err := c.get(ctx, fmt.Sprintf("/api/timetable/%s/%d", year, weekNumber), &timetable); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Metas получает заголовки всех опубликованных недель потока
func (c *APIClient) Metas(ctx context.Context, year model.CohortYear) ([]model.TimetableMeta, error) {
	var metas []model.TimetableMeta
	if err := c.get(ctx, fmt.Sprintf("/api/timetables/%s", year), &metas); err != nil {
		return nil, err
	}
	return metas, nil
}

func (c *APIClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK || !body.Success {
		return &APIError{Status: resp.StatusCode, Message: body.Message}
	}

	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decode data %s: %w", path, err)
	}
	return nil
}

// IsNotFound проверяет, означает ли ошибка отсутствие данных
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
