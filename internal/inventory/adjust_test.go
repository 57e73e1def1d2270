package inventory_test

import (
	"errors"
	"math"
	"testing"

	"katalog/internal/inventory"
	"katalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Create(t *testing.T) {
	for quantity := 1; quantity <= 50; quantity++ {
		level, err := inventory.Compute(inventory.Request{Mode: inventory.Create, Quantity: quantity, ManufacturerID: "m-1"})
		require.NoError(t, err)
		assert.Equal(t, quantity, level)
	}

	for _, quantity := range []int{0, -1, -100} {
		_, err := inventory.Compute(inventory.Request{Mode: inventory.Create, Quantity: quantity, ManufacturerID: "m-1"})
		assert.True(t, errors.Is(err, models.ErrInvalidQuantity), "quantity %d", quantity)
	}
}

func TestCompute_UpdateAdd(t *testing.T) {
	for current := 1; current <= 20; current++ {
		for delta := 0; delta <= 20; delta++ {
			level, err := inventory.Compute(inventory.Request{
				Mode: inventory.Update, CurrentStock: current, Delta: delta,
				Operation: inventory.Add, ManufacturerID: "m-1",
			})
			require.NoError(t, err)
			assert.Equal(t, current+delta, level)
		}
	}
}

func TestCompute_AddOverflowIsInvalidQuantity(t *testing.T) {
	level, err := inventory.Compute(inventory.Request{
		Mode: inventory.Update, CurrentStock: 5, Delta: math.MaxInt,
		Operation: inventory.Add, ManufacturerID: "m-1",
	})
	assert.Zero(t, level)
	assert.True(t, errors.Is(err, models.ErrInvalidQuantity), "got %v", err)
	assert.False(t, errors.Is(err, models.ErrStockFloorViolation))

	level, err = inventory.Compute(inventory.Request{
		Mode: inventory.Update, CurrentStock: 5, Delta: math.MaxInt - 5,
		Operation: inventory.Add, ManufacturerID: "m-1",
	})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, level)

	_, err = inventory.Compute(inventory.Request{
		Mode: inventory.Update, CurrentStock: 5, Delta: math.MaxInt,
		Operation: inventory.Subtract, ManufacturerID: "m-1",
	})
	assert.True(t, errors.Is(err, models.ErrStockFloorViolation), "got %v", err)
}

func TestCompute_UpdateSubtract(t *testing.T) {
	for current := 1; current <= 20; current++ {
		for delta := 0; delta <= 25; delta++ {
			level, err := inventory.Compute(inventory.Request{
				Mode: inventory.Update, CurrentStock: current, Delta: delta,
				Operation: inventory.Subtract, ManufacturerID: "m-1",
			})
			if current-delta < inventory.MinStockLevel {
				assert.True(t, errors.Is(err, models.ErrStockFloorViolation), "current %d delta %d", current, delta)
				continue
			}
			require.NoError(t, err)
			assert.Equal(t, current-delta, level)
		}
	}
}

// The floor is 1, not 0: selling the last unit through an adjustment is rejected.
func TestCompute_FloorIsOneNotZero(t *testing.T) {
	_, err := inventory.Compute(inventory.Request{
		Mode: inventory.Update, CurrentStock: 1, Delta: 1,
		Operation: inventory.Subtract, ManufacturerID: "m-1",
	})
	assert.True(t, errors.Is(err, models.ErrStockFloorViolation))

	level, err := inventory.Compute(inventory.Request{
		Mode: inventory.Update, CurrentStock: 8, Delta: 7,
		Operation: inventory.Subtract, ManufacturerID: "m-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, level)
}

func TestCompute_MissingManufacturerCheckedFirst(t *testing.T) {
	requests := []inventory.Request{
		{Mode: inventory.Create, Quantity: 5},
		{Mode: inventory.Create, Quantity: 0},
		{Mode: inventory.Update, CurrentStock: 1, Delta: 10, Operation: inventory.Subtract, ManufacturerID: "  "},
	}
	for _, req := range requests {
		_, err := inventory.Compute(req)
		assert.True(t, errors.Is(err, models.ErrMissingManufacturer))
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    inventory.Operation
		wantErr bool
	}{
		{"Add", inventory.Add, false},
		{"", inventory.Add, false},
		{"subtract", inventory.Subtract, false},
		{"Subtract", inventory.Subtract, false},
		{"remove", "", true},
	}
	for _, tt := range tests {
		op, err := inventory.ParseOperation(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, models.ErrInvalidOperation))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, op)
	}
}

func TestClampDelta(t *testing.T) {
	assert.Equal(t, 0, inventory.ClampDelta(-3))
	assert.Equal(t, 0, inventory.ClampDelta(0))
	assert.Equal(t, 4, inventory.ClampDelta(4))
}
