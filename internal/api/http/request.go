package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type requestBookingRequest struct {
	ListingID        string `json:"listing_id" validate:"required"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IncludeInsurance bool   `json:"include_insurance"`
	CreditCents      int64  `json:"credit_cents" validate:"gte=0"`
	PaymentRef       string `json:"payment_ref" validate:"max=255"`
}

type quoteRequest struct {
	ListingID        string `json:"listing_id" validate:"required"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IncludeInsurance bool   `json:"include_insurance"`
	CreditCents      int64  `json:"credit_cents" validate:"gte=0"`
}

type paymentRequest struct {
	PaymentRef string `json:"payment_ref" validate:"required,max=255"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type issueRequest struct {
	Note string `json:"note" validate:"required,max=2000"`
}

type datesRequest struct {
	Dates []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	// Status is accepted for symmetry with the calendar; owners can only
	// set "blocked".
	Status string `json:"status" validate:"omitempty,oneof=blocked"`
}

// decodeJSON reads the body into dst and validates it. An empty body
// decodes as the zero value.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return domain.NewValidationError("invalid request body")
		}
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError(err.Error())
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s: %s", fe.Field(), fieldMessage(fe)))
	}
	return domain.NewValidationError(problems...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "datetime":
		return "must be a date in yyyy-mm-dd format"
	case "min":
		return fmt.Sprintf("minimum is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum is %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "invalid value"
}

// parseDates converts already validated yyyy-mm-dd strings.
func parseDates(raw ...string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := utils.ParseDate(s)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// pageParams reads page and page_size, defaulting to 1 and 20.
func pageParams(r *http.Request) (int32, int32, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(r, "page_size", 20)
	if err != nil {
		return 0, 0, err
	}
	if size > 100 {
		size = 100
	}
	return page, size, nil
}

func queryInt(r *http.Request, key string, def int32) (int32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be a positive integer", key))
	}
	return int32(n), nil
}
