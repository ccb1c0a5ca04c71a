package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"go.uber.org/zap"
)

// TimetableService операции кэша расписаний, нужные обработчикам
type TimetableService interface {
	FindEntry(ctx context.Context, year model.CohortYear, weekNumber int) (model.TimetableEntry, error)
	FetchAsIs(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error)
	Connect(ctx context.Context) error
	FetchCached(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error)
	ListMetas(ctx context.Context, year model.CohortYear) ([]model.TimetableMeta, error)
}

type Handler struct {
	service          TimetableService
	documentationURL string
	logger           *zap.Logger
}

func NewHandler(service TimetableService, documentationURL string, logger *zap.Logger) *Handler {
	return &Handler{
		service:          service,
		documentationURL: documentationURL,
		logger:           logger,
	}
}

// Register регистрирует маршруты API
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api", h.handleIndex)
	mux.HandleFunc("GET /api/timetable/{year}/{weekNumber}", h.handleTimetable)
	mux.HandleFunc("GET /api/timetables/{year}", h.handleTimetables)
	mux.HandleFunc("GET /health", h.handleHealth)
}

type discovery struct {
	Documentation string             `json:"documentation"`
	Years         []model.CohortYear `json:"years"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeData(w, discovery{
		Documentation: h.documentationURL,
		Years:         model.AllCohorts(),
	})
}

func (h *Handler) handleTimetable(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r.PathValue("year"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid year.")
		return
	}

	weekNumber, err := strconv.Atoi(r.PathValue("weekNumber"))
	if err != nil || !model.ValidWeekNumber(weekNumber) {
		writeFailure(w, http.StatusBadRequest, "Invalid week number.")
		return
	}

	asIs, err := parseAsIs(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid asIs parameter.")
		return
	}

	ctx := r.Context()
	entry, err := h.service.FindEntry(ctx, year, weekNumber)
	if err != nil {
		h.fail(w, r, err, "Timetable not found, are you sure this week has been published?")
		return
	}

	var timetable *model.Timetable
	if asIs {
		timetable, err = h.service.FetchAsIs(ctx, entry)
	} else {
		if err = h.service.Connect(ctx); err == nil {
			timetable, err = h.service.FetchCached(ctx, entry)
		}
	}
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	writeData(w, timetable)
}

func (h *Handler) handleTimetables(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r.PathValue("year"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid year.")
		return
	}

	metas, err := h.service.ListMetas(r.Context(), year)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	writeData(w, metas)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// fail пишет ошибку; notFoundMessage заменяет текст для 404
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusNotFound && notFoundMessage != "" {
		message = notFoundMessage
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeFailure(w, status, message)
}

// parseYear принимает только коды потоков A1..A3
func parseYear(raw string) (model.CohortYear, error) {
	year := model.CohortYear(raw)
	if !year.Valid() {
		return "", model.ErrInvalidParameter
	}
	return year, nil
}

// parseAsIs: ?asIs, ?asIs=true, ?asIs=1 включают обход кэша
func parseAsIs(r *http.Request) (bool, error) {
	query := r.URL.Query()
	if !query.Has("asIs") {
		return false, nil
	}
	value := query.Get("asIs")
	if value == "" {
		return true, nil
	}
	return strconv.ParseBool(value)
}
