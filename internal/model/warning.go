package model

import "fmt"

// WarningCode identifies a non-fatal validation finding. Warnings never
// abort a computation; they travel alongside the result.
type WarningCode string

// Warning codes.
const (
	WarnMissingDescription   WarningCode = "MISSING_DESCRIPTION"
	WarnLocalExceedsTotal    WarningCode = "LOCAL_EXCEEDS_EVERYWHERE"
	WarnVarianceExceeded     WarningCode = "VARIANCE_EXCEEDED"
	WarnUnknownSaleType      WarningCode = "UNKNOWN_SALE_TYPE"
	WarnNowhereIncomeCreated WarningCode = "NOWHERE_INCOME_CREATED"
)

// Warning is a non-fatal validation finding attached to a result.
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	Field   string      `json:"field,omitempty" yaml:"field,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.Field, w.Message)
}
