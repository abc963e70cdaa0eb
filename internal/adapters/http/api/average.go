package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/pacematch/internal/domain/dataset"
	"github.com/okian/pacematch/internal/domain/finishtime"
)

// AverageDependencies builds the dataset queried by GET /average.
type AverageDependencies interface {
	Dataset(ctx context.Context) (*Dataset, error)
}

// AverageHandler serves the average finish time query.
type AverageHandler struct {
	deps AverageDependencies
}

// NewAverageHandler creates a new average handler.
func NewAverageHandler(deps AverageDependencies) *AverageHandler {
	return &AverageHandler{deps: deps}
}

type averageResponse struct {
	AverageSeconds float64 `json:"average_seconds"`
	AverageTime    string  `json:"average_time"`
	Count          int     `json:"count"`
}

// HandleGetAverage handles GET /average?race=&sex=&age= requests.
func (h *AverageHandler) HandleGetAverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ds, err := h.deps.Dataset(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	avg, n, err := ds.AverageFinishTime(f)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, averageResponse{
			AverageSeconds: avg,
			AverageTime:    finishtime.ToText(int(math.Round(avg))),
			Count:          n,
		})
	case errors.Is(err, dataset.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, dataset.ErrEmpty):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func parseFilter(r *http.Request) (dataset.Filter, error) {
	q := r.URL.Query()
	f := dataset.Filter{
		Race: strings.ToUpper(strings.TrimSpace(q.Get("race"))),
		Sex:  strings.ToUpper(strings.TrimSpace(q.Get("sex"))),
	}
	if raw := strings.TrimSpace(q.Get("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return dataset.Filter{}, fmt.Errorf("%w: age must be an integer", ErrBadRequest)
		}
		f.Age = &age
	}
	return f, nil
}
