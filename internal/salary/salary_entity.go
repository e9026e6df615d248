package salary

import (
	"time"

	salaryerrors "go-salary/internal/salary/errors"

	"github.com/shopspring/decimal"
)

type Salary struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	Name            string          `gorm:"size:255;not null"`
	Email           string          `gorm:"size:255;not null;uniqueIndex:uq_salaries_email"`
	SalaryLocal     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	SalaryEuros     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Commission      decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	DisplayedSalary decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Salary) TableName() string {
	return "salaries"
}

// Patch carries the fields of a partial update. Nil means "leave unchanged".
type Patch struct {
	Name        *string
	SalaryLocal *decimal.Decimal
	SalaryEuros *decimal.Decimal
	Commission  *decimal.Decimal
}

// Apply copies the supplied patch fields onto s and recomputes DisplayedSalary.
func (s *Salary) Apply(p Patch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.SalaryLocal != nil {
		s.SalaryLocal = roundMoney(*p.SalaryLocal)
	}
	if p.SalaryEuros != nil {
		s.SalaryEuros = roundMoney(*p.SalaryEuros)
	}
	if p.Commission != nil {
		s.Commission = roundMoney(*p.Commission)
	}
	s.recompute()
}

func (s *Salary) recompute() {
	s.DisplayedSalary = ComputeDisplayedSalary(s.SalaryEuros, s.Commission)
}

// checkRange rejects amounts the money columns cannot hold. DisplayedSalary
// is a sum, so it can overflow even when both inputs fit.
func (s *Salary) checkRange() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"salary_local", s.SalaryLocal},
		{"salary_euros", s.SalaryEuros},
		{"commission", s.Commission},
		{"displayed_salary", s.DisplayedSalary},
	}
	for _, f := range fields {
		if f.value.Abs().GreaterThan(MaxMoney) {
			return salaryerrors.MoneyOutOfRange(f.name, MaxMoney.StringFixed(moneyScale))
		}
	}
	return nil
}
