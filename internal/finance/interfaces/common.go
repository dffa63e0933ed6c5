package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type RespondJSONFunc func(w http.ResponseWriter, status int, payload interface{})

type RespondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)

const dateLayout = "2006-01-02"

type pathParamKey string

var notFoundByParam = map[string]string{
	"transactionID": financeErrors.ResourceTransaction,
	"budgetID":      financeErrors.ResourceBudget,
}

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// ValidatePathParamsMiddleware parses each named path value as a UUID and stores
// it on the request context. Malformed ids answer with the resource's 404.
func ValidatePathParamsMiddleware(respondError RespondErrorFunc, next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			paramValue := r.PathValue(param)
			if paramValue == "" {
				respondError(w, http.StatusBadRequest, capitalizeFirstLetter(fmt.Sprintf("%s is required", param)))
				return
			}

			parsedUUID, err := uuid.Parse(paramValue)
			if err != nil {
				logger.FromContext(r.Context()).WithField("param", param).Debug("malformed path id")
				if resource, ok := notFoundByParam[param]; ok {
					respondError(w, http.StatusNotFound, financeErrors.NewNotFoundError(resource).Error())
					return
				}
				respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), pathParamKey(param), parsedUUID))
		}
		next.ServeHTTP(w, r)
	})
}

func pathID(r *http.Request, param string) (uuid.UUID, bool) {
	id, ok := r.Context().Value(pathParamKey(param)).(uuid.UUID)
	return id, ok
}

func ownerID(r *http.Request) (string, bool) {
	return user.UserIDFromContext(r.Context())
}

// respondServiceError maps service errors onto HTTP statuses. Anything that is
// not a known domain error is logged and hidden behind fallback.
func respondServiceError(w http.ResponseWriter, r *http.Request, respondError RespondErrorFunc, err error, fallback string) {
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		respondError(w, http.StatusBadRequest, "Validation errors occurred", validationErrors.Messages())
	case financeErrors.IsValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case financeErrors.IsAuthorization(err):
		respondError(w, http.StatusUnauthorized, err.Error())
	case financeErrors.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.FromContext(r.Context()).WithError(err).Error(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

// parseTimestamp accepts RFC 3339 timestamps and plain dates.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return parseDate(value)
}

// parseDateRange reads startDate/endDate query values. endDate is inclusive, so
// the returned upper bound is the start of the following day.
func parseDateRange(r *http.Request) (from, to *time.Time, err error) {
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		start, parseErr := parseDate(raw)
		if parseErr != nil {
			return nil, nil, financeErrors.NewValidationError("Invalid startDate format, expected YYYY-MM-DD")
		}
		from = &start
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		end, parseErr := parseDate(raw)
		if parseErr != nil {
			return nil, nil, financeErrors.NewValidationError("Invalid endDate format, expected YYYY-MM-DD")
		}
		end = end.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, financeErrors.NewValidationError("startDate must not be after endDate")
	}
	return from, to, nil
}
