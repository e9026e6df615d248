package salary

import "github.com/shopspring/decimal"

const moneyScale = 2

// DefaultCommission is assigned to a record when it is first created.
var DefaultCommission = decimal.New(50000, -moneyScale)

// MaxMoney is the largest amount a numeric(15,2) column stores.
var MaxMoney = decimal.RequireFromString("9999999999999.99")

// ComputeDisplayedSalary returns salaryEuros + commission rounded to cents.
func ComputeDisplayedSalary(salaryEuros, commission decimal.Decimal) decimal.Decimal {
	return roundMoney(salaryEuros.Add(commission))
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}
