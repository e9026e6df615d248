package salary

import (
	"errors"

	salaryerrors "go-salary/internal/salary/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// numeric_value_out_of_range
const pgNumericOutOfRange = "22003"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salaryerrors.ErrSalaryNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
		return salaryerrors.ErrSalaryOutOfRange
	}

	return err
}
