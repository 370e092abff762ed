package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/clubworks/clubledger/internal/billing"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/clubworks/clubledger/internal/receipt"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, feeplandomain.ErrScopeForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, plandomain.ErrInvalidPlan),
		errors.Is(err, plandomain.ErrInvalidOwner),
		errors.Is(err, plandomain.ErrInvalidName),
		errors.Is(err, plandomain.ErrInvalidBaseAmount),
		errors.Is(err, plandomain.ErrInvalidCurrency),
		errors.Is(err, feeplandomain.ErrInvalidStudent),
		errors.Is(err, feeplandomain.ErrInvalidPlan),
		errors.Is(err, feeplandomain.ErrPlanInactive),
		errors.Is(err, feeplandomain.ErrPlanScopeMismatch),
		errors.Is(err, feeplandomain.ErrMissingAmount),
		errors.Is(err, feeplandomain.ErrInvalidCustomAmount),
		errors.Is(err, feeplandomain.ErrMissingCurrency),
		errors.Is(err, feeplandomain.ErrInvalidCurrency),
		errors.Is(err, feeplandomain.ErrInvalidEffectiveFrom),
		errors.Is(err, paymentdomain.ErrInvalidPayment),
		errors.Is(err, paymentdomain.ErrInvalidStudent),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidCurrency),
		errors.Is(err, paymentdomain.ErrInvalidStatus),
		errors.Is(err, paymentdomain.ErrInvalidPayAt),
		errors.Is(err, generationdomain.ErrInvalidCohort),
		errors.Is(err, billing.ErrInvalidMonth),
		errors.Is(err, billing.ErrInvalidInterval),
		errors.Is(err, billing.ErrInvalidIntervalCount),
		errors.Is(err, billing.ErrInvalidDiscountType),
		errors.Is(err, billing.ErrInvalidDiscountValue),
		errors.Is(err, currencydomain.ErrInactive):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, plandomain.ErrDuplicateName),
		errors.Is(err, paymentdomain.ErrDuplicateForMonth),
		errors.Is(err, generationdomain.ErrGenerationLocked),
		errors.Is(err, receipt.ErrNotPaid):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, plandomain.ErrOwnerNotFound),
		errors.Is(err, feeplandomain.ErrNotFound),
		errors.Is(err, feeplandomain.ErrStudentNotFound),
		errors.Is(err, feeplandomain.ErrPlanNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrStudentNotFound),
		errors.Is(err, generationdomain.ErrCohortNotFound),
		errors.Is(err, directorydomain.ErrStudentNotFound),
		errors.Is(err, directorydomain.ErrClubNotFound),
		errors.Is(err, directorydomain.ErrOrganizationNotFound),
		errors.Is(err, currencydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return "request"
}
