package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int64
	CustomerID    int64
	CustomerEmail string
	ProductIDs    []int64
	OrderDate     time.Time
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UniqueIDs drops repeated ids while keeping first-seen order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
