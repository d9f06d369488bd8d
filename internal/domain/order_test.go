package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_Creation(t *testing.T) {
	orderDate := time.Now()
	total := decimal.RequireFromString("10.01")

	order := Order{
		ID:            1,
		CustomerID:    10,
		CustomerEmail: "john@example.com",
		ProductIDs:    []int64{1, 2},
		OrderDate:     orderDate,
		TotalAmount:   total,
	}

	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, int64(10), order.CustomerID)
	assert.Equal(t, []int64{1, 2}, order.ProductIDs)
	assert.Equal(t, orderDate, order.OrderDate)
	assert.True(t, total.Equal(order.TotalAmount))
}

func TestUniqueIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want []int64
	}{
		{"empty", []int64{}, []int64{}},
		{"no duplicates", []int64{3, 1, 2}, []int64{3, 1, 2}},
		{"duplicates keep first position", []int64{2, 1, 2, 3, 1}, []int64{2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueIDs(tt.in))
		})
	}
}

func TestMissingIDs(t *testing.T) {
	found := []Product{{ID: 1}, {ID: 3}}

	assert.Equal(t, []int64{42, 7}, MissingIDs([]int64{42, 1, 7, 3}, found))
	assert.Nil(t, MissingIDs([]int64{3, 1}, found))
}
