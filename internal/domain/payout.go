package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the marketplace share withheld from every vendor payout
var DefaultCommissionRate = decimal.RequireFromString("0.05")

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the gateway's integer minor units
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// VendorShare is one vendor's portion of a paid order
type VendorShare struct {
	VendorID uuid.UUID
	Gross    decimal.Decimal
	Payout   decimal.Decimal
	Items    int
}

// ComputeVendorShares groups items by vendor in first-seen order.
// Payout is gross * (1 - rate) rounded to 2 decimal places.
func ComputeVendorShares(items []OrderItem, commissionRate decimal.Decimal) []VendorShare {
	keep := decimal.NewFromInt(1).Sub(commissionRate)

	index := make(map[uuid.UUID]int)
	var shares []VendorShare
	for _, item := range items {
		i, ok := index[item.VendorID]
		if !ok {
			i = len(shares)
			index[item.VendorID] = i
			shares = append(shares, VendorShare{VendorID: item.VendorID, Gross: decimal.Zero})
		}
		shares[i].Gross = shares[i].Gross.Add(item.Total)
		shares[i].Items++
	}

	for i := range shares {
		shares[i].Payout = shares[i].Gross.Mul(keep).Round(2)
	}
	return shares
}

// LineTotal is price * quantity for one cart line
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
