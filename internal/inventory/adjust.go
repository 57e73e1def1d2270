// Package inventory computes stock levels for product create and update
// requests. Everything here is pure: callers load the current stock level and
// persist the result themselves.
package inventory

import (
	"math"
	"strings"

	"katalog/internal/models"
)

// MinStockLevel is the lowest stock level a product may hold after any
// successful create or update. Zero is rejected, not treated as out of stock.
const MinStockLevel = 1

// Mode selects between the create and update branches of Compute.
type Mode int

const (
	Create Mode = iota
	Update
)

func (m Mode) String() string {
	if m == Update {
		return "update"
	}
	return "create"
}

// Operation is the direction of a stock adjustment.
type Operation string

const (
	Add      Operation = "Add"
	Subtract Operation = "Subtract"
)

// ParseOperation accepts "Add" or "Subtract" in any case. An empty string
// means Add.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "add":
		return Add, nil
	case "subtract":
		return Subtract, nil
	default:
		return "", models.NewCatalogError(models.KindInvalidOperation, "operation must be Add or Subtract, got %q", s)
	}
}

// ClampDelta maps negative adjustment magnitudes to zero. Compute expects
// callers to have applied it already.
func ClampDelta(delta int) int {
	if delta < 0 {
		return 0
	}
	return delta
}

// Request carries everything Compute needs. Quantity is read in Create mode,
// CurrentStock and Operation in Update mode.
type Request struct {
	Mode           Mode
	Quantity       int
	CurrentStock   int
	Delta          int
	Operation      Operation
	ManufacturerID string
}

// Compute returns the stock level a product should hold after req, or a
// *models.CatalogError describing why req is rejected.
func Compute(req Request) (int, error) {
	if strings.TrimSpace(req.ManufacturerID) == "" {
		return 0, models.ErrMissingManufacturer
	}

	if req.Mode == Create {
		if req.Quantity < MinStockLevel {
			return 0, models.NewCatalogError(models.KindInvalidQuantity,
				"initial quantity must be at least %d, got %d", MinStockLevel, req.Quantity)
		}
		return req.Quantity, nil
	}

	if req.Operation != Subtract && req.Delta > math.MaxInt-req.CurrentStock {
		return 0, models.NewCatalogError(models.KindInvalidQuantity,
			"quantity change %d is too large for current stock %d", req.Delta, req.CurrentStock)
	}
	adjusted := req.CurrentStock + req.Delta
	if req.Operation == Subtract {
		adjusted = req.CurrentStock - req.Delta
	}
	if adjusted < MinStockLevel {
		return 0, models.NewCatalogError(models.KindStockFloorViolation,
			"stock level cannot be reduced below %d (current %d, subtract %d)", MinStockLevel, req.CurrentStock, req.Delta)
	}
	return adjusted, nil
}
