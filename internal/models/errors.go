package models

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category returned to API callers.
type Kind string

// Validation kinds.
const (
	KindMissingManufacturer Kind = "MissingManufacturer"
	KindInvalidQuantity     Kind = "InvalidQuantity"
	KindStockFloorViolation Kind = "StockFloorViolation"
	KindInvalidOperation    Kind = "InvalidOperation"
	KindInvalidProduct      Kind = "InvalidProduct"
	KindMissingCategory     Kind = "MissingCategory"
	KindInvalidCategory     Kind = "InvalidCategory"
	KindInvalidManufacturer Kind = "InvalidManufacturer"
)

// Reference kinds.
const (
	KindProductNotFound      Kind = "ProductNotFound"
	KindCategoryNotFound     Kind = "CategoryNotFound"
	KindCategoryExists       Kind = "CategoryExists"
	KindCategoryInUse        Kind = "CategoryInUse"
	KindManufacturerNotFound Kind = "ManufacturerNotFound"
	KindManufacturerExists   Kind = "ManufacturerExists"
	KindManufacturerInUse    Kind = "ManufacturerInUse"
)

// Concurrency and external kinds.
const (
	KindVersionConflict  Kind = "VersionConflict"
	KindConcurrentUpdate Kind = "ConcurrentUpdate"
	KindExtractionFailed Kind = "ExtractionFailed"
)

// CatalogError is the typed error returned by every catalog operation.
// Two CatalogErrors match under errors.Is when their kinds are equal.
type CatalogError struct {
	Kind    Kind
	Message string
	Details map[string]string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CatalogError of the same kind.
func (e *CatalogError) Is(target error) bool {
	t, ok := target.(*CatalogError)
	return ok && t.Kind == e.Kind
}

// NewCatalogError creates a CatalogError with a formatted message.
func NewCatalogError(kind Kind, format string, args ...interface{}) *CatalogError {
	return &CatalogError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy of e carrying per-field details.
func (e *CatalogError) WithDetails(details map[string]string) *CatalogError {
	return &CatalogError{Kind: e.Kind, Message: e.Message, Details: details, Cause: e.Cause}
}

// Wrap returns a copy of e caused by cause.
func (e *CatalogError) Wrap(cause error) *CatalogError {
	return &CatalogError{Kind: e.Kind, Message: e.Message, Details: e.Details, Cause: cause}
}

// Sentinels for errors.Is comparisons.
var (
	ErrMissingManufacturer = NewCatalogError(KindMissingManufacturer, "manufacturer is required")
	ErrInvalidQuantity     = NewCatalogError(KindInvalidQuantity, "initial quantity must be at least 1")
	ErrStockFloorViolation = NewCatalogError(KindStockFloorViolation, "stock level cannot be reduced below 1")
	ErrInvalidOperation    = NewCatalogError(KindInvalidOperation, "operation must be Add or Subtract")
	ErrInvalidProduct      = NewCatalogError(KindInvalidProduct, "product validation failed")
	ErrMissingCategory     = NewCatalogError(KindMissingCategory, "category is required")
	ErrInvalidCategory     = NewCatalogError(KindInvalidCategory, "category name is required")
	ErrInvalidManufacturer = NewCatalogError(KindInvalidManufacturer, "manufacturer name is required")

	ErrProductNotFound      = NewCatalogError(KindProductNotFound, "product not found")
	ErrCategoryNotFound     = NewCatalogError(KindCategoryNotFound, "category not found")
	ErrCategoryExists       = NewCatalogError(KindCategoryExists, "category already exists")
	ErrCategoryInUse        = NewCatalogError(KindCategoryInUse, "category is referenced by products")
	ErrManufacturerNotFound = NewCatalogError(KindManufacturerNotFound, "manufacturer not found")
	ErrManufacturerExists   = NewCatalogError(KindManufacturerExists, "manufacturer already exists")
	ErrManufacturerInUse    = NewCatalogError(KindManufacturerInUse, "manufacturer is referenced by products")

	ErrVersionConflict  = NewCatalogError(KindVersionConflict, "product was modified concurrently")
	ErrConcurrentUpdate = NewCatalogError(KindConcurrentUpdate, "product is being modified concurrently, try again")
	ErrExtractionFailed = NewCatalogError(KindExtractionFailed, "text extraction failed")
)

// AsCatalogError unwraps err into a CatalogError if it carries one.
func AsCatalogError(err error) (*CatalogError, bool) {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
