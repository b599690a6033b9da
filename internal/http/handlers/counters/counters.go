// Package counters serves the per-category daily counter endpoints. Both
// categories (roly-poly directions, other objects) share these handlers,
// parameterized by a category descriptor.
package counters

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/harutok/counts-service/internal/events"
	"github.com/harutok/counts-service/internal/storage"
	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/utils/datekey"
	"github.com/harutok/counts-service/internal/utils/response"
)

// GetDay returns all counters of one (user, day) row
// @Summary Get counters for a day
// @Description Get every counter of the category for a user's calendar day
// @Tags counters
// @Produce json
// @Param userId path int true "User ID"
// @Param day query string false "Day as YYYY-MM-DD (alternative to year/month/day)"
// @Param year query int false "Year part"
// @Param month query int false "Month part (1-based)"
// @Success 200 {object} response.Response "Counters for the day"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "No row for that day"
// @Router /{category}/{userId} [get]
func GetDay(store storage.Storage, category types.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseUserID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		day, err := dayFromQuery(r.URL.Query())
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		counts, err := store.GetDayCounts(r.Context(), category, userID, day)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("Not found")))
			return
		}
		if err != nil {
			slog.Error("Failed to read day counts",
				slog.String("category", category.Name),
				slog.Int64("user_id", userID),
				slog.String("day", day),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Internal server error")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(counts))
	}
}

// CountUp increments one counter field for a user's day
// @Summary Record one observation
// @Description Increment one counter field by 1, creating the day's row on first use
// @Tags counters
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response "Count recorded"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Registration failed"
// @Router /{category}/{userId} [post]
func CountUp(store storage.Storage, publisher events.Publisher, category types.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseUserID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		countUp, err := category.DecodeCountUp(r.Body)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		// Missing day means "today" in the process-local calendar.
		day, err := datekey.Resolve(countUp.Day)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		err = store.IncrementDayCount(r.Context(), category, userID, day, countUp.Field)
		if errors.Is(err, storage.ErrInvalidField) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}
		if errors.Is(err, storage.ErrWriteFailed) {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Failed to register")))
			return
		}
		if err != nil {
			slog.Error("Failed to record count",
				slog.String("category", category.Name),
				slog.Int64("user_id", userID),
				slog.String("field", countUp.Field),
				slog.String("day", day),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Internal server error")))
			return
		}

		if publisher != nil {
			publisher.PublishCountRecorded(category.Name, userID, countUp.Field, day)
		}

		response.WriteJSON(w, http.StatusOK, response.OK(nil))
	}
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("userId"), 10, 64)
}

// dayFromQuery resolves the two historical query shapes behind one rule:
// year/month/day integer parts when year or month is present, otherwise an
// explicit day string. A day is always required on reads.
func dayFromQuery(query url.Values) (string, error) {
	if query.Get("year") != "" || query.Get("month") != "" {
		year, err := strconv.Atoi(query.Get("year"))
		if err != nil {
			return "", err
		}
		month, err := strconv.Atoi(query.Get("month"))
		if err != nil {
			return "", err
		}
		day, err := strconv.Atoi(query.Get("day"))
		if err != nil {
			return "", err
		}
		return datekey.FromParts(year, month, day)
	}

	if day := query.Get("day"); day != "" {
		return datekey.FromString(day)
	}

	return "", errors.New("day is required")
}
