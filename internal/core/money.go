// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from user
// input. Amounts are kept as exact decimals; floats are only used for display.
package core

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a signed amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Rounding is half away from zero on the third decimal.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("-12,5")  -> -12.50
//	ParseAmount("1.005")  -> 1.01
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(digits, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range digits {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// EvalAmount accepts either a plain amount, as ParseAmount does, or an
// arithmetic formula such as "12.50+3.20" or "3*4.10". Formula results are
// rounded to cents. Formulas use dot decimals only.
func EvalAmount(s string) (decimal.Decimal, error) {
	if d, err := ParseAmount(s); err == nil {
		return d, nil
	}

	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse formula %q: %w", s, ErrInvalidAmount)
	}
	if len(expr.Vars()) > 0 {
		return decimal.Zero, fmt.Errorf("formula %q references variables: %w", s, ErrInvalidAmount)
	}
	result, err := expr.Evaluate(map[string]interface{}{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("evaluate formula %q: %w", s, ErrInvalidAmount)
	}
	f, ok := result.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("formula %q is not a finite number: %w", s, ErrInvalidAmount)
	}
	return decimal.NewFromFloat(f).Round(2), nil
}

// Expense turns a magnitude entered by the user into an expense amount.
func Expense(magnitude decimal.Decimal) decimal.Decimal {
	return magnitude.Abs().Neg()
}

// Income turns a magnitude entered by the user into an income amount.
func Income(magnitude decimal.Decimal) decimal.Decimal {
	return magnitude.Abs()
}
