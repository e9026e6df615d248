package salary

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Money bounds follow the numeric(15,2) columns.
type CreateSalaryRequest struct {
	Name        string           `json:"name" binding:"required,notblank,max=255"`
	Email       string           `json:"email" binding:"required,email,max=255"`
	SalaryLocal *decimal.Decimal `json:"salary_local" binding:"required,min=0,lte=9999999999999.99"`
	SalaryEuros *decimal.Decimal `json:"salary_euros" binding:"required,min=0,lte=9999999999999.99"`
}

// UpdateSalaryRequest only binds the mutable fields; email and
// displayed_salary in the body are ignored. A mutable field sent as null is
// recorded in nullFields so the handler can reject it.
type UpdateSalaryRequest struct {
	Name        *string          `json:"name" binding:"omitempty,notblank,max=255"`
	SalaryLocal *decimal.Decimal `json:"salary_local" binding:"omitempty,min=0,lte=9999999999999.99"`
	SalaryEuros *decimal.Decimal `json:"salary_euros" binding:"omitempty,min=0,lte=9999999999999.99"`
	Commission  *decimal.Decimal `json:"commission" binding:"omitempty,min=0,lte=9999999999999.99"`

	nullFields []string
}

var updatableFields = []string{"name", "salary_local", "salary_euros", "commission"}

func (r *UpdateSalaryRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type plain UpdateSalaryRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = UpdateSalaryRequest(p)

	r.nullFields = nil
	for _, field := range updatableFields {
		if v, ok := raw[field]; ok && string(v) == "null" {
			r.nullFields = append(r.nullFields, field)
		}
	}
	return nil
}

// NullFields lists the mutable fields that were present in the body as null.
func (r UpdateSalaryRequest) NullFields() []string {
	return r.nullFields
}

func (r UpdateSalaryRequest) toPatch() Patch {
	return Patch{
		Name:        r.Name,
		SalaryLocal: r.SalaryLocal,
		SalaryEuros: r.SalaryEuros,
		Commission:  r.Commission,
	}
}

type SalaryResponse struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	SalaryLocal     json.Number `json:"salary_local"`
	SalaryEuros     json.Number `json:"salary_euros"`
	Commission      json.Number `json:"commission"`
	DisplayedSalary json.Number `json:"displayed_salary"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
