package service

import "github.com/shopspring/decimal"

var (
	hundredPercent = decimal.NewFromInt(100)
	zeroPercent    = decimal.Zero
)
