// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// exactExponent is below the smallest binary exponent, so conversions keep every digit
const exactExponent = -1075

// CalculateBill returns usage (kWh) × rate (currency per kWh), rounded to 2 decimals
func CalculateBill(usageKWh, ratePerUnit float64) float64 {
	return roundTo(usageKWh*ratePerUnit, 2)
}

// roundTo rounds the exact binary value half to even, so 2.675 (stored as
// 2.67499...) gives 2.67. Non-finite values are returned unchanged.
func roundTo(value float64, places int32) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	return decimal.NewFromFloatWithExponent(value, exactExponent).RoundBank(places).InexactFloat64()
}

// FormatCurrency formats a value as currency with thousands separators
func FormatCurrency(value float64, symbol string) string {
	return symbol + humanize.FormatFloat("#,###.##", value)
}

// FormatKWh formats an energy amount with thousands separators
func FormatKWh(value float64) string {
	return fmt.Sprintf("%s kWh", humanize.FormatFloat("#,###.##", value))
}
