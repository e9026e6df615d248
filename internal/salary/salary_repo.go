package salary

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errUpsertRowVanished means the insert hit an existing email but the row was
// deleted before it could be locked. Retrying takes the insert branch.
var errUpsertRowVanished = errors.New("salary row deleted during upsert")

type UpsertInput struct {
	Name        string
	Email       string
	SalaryLocal decimal.Decimal
	SalaryEuros decimal.Decimal
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	UpsertByEmail(ctx context.Context, in UpsertInput) (*Salary, bool, error)
	FindAll(ctx context.Context) ([]Salary, error)
	FindByID(ctx context.Context, id int64) (*Salary, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Salary, error)
	Update(ctx context.Context, salary *Salary) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

// UpsertByEmail inserts a new record or overwrites name and both salaries of
// the record that already owns the email. The unique index on email decides
// which branch runs, so concurrent callers never produce two rows.
// Commission is only set on insert. The bool result reports whether a row was
// created.
func (r *repository) UpsertByEmail(ctx context.Context, in UpsertInput) (*Salary, bool, error) {
	now := time.Now().UTC()
	salary := &Salary{
		Name:        in.Name,
		Email:       in.Email,
		SalaryLocal: roundMoney(in.SalaryLocal),
		SalaryEuros: roundMoney(in.SalaryEuros),
		Commission:  DefaultCommission,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	salary.recompute()
	if err := salary.checkRange(); err != nil {
		return nil, false, err
	}

	res := r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(salary)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return salary, true, nil
	}

	var existing Salary
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ?", in.Email).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errUpsertRowVanished
	}
	if err != nil {
		return nil, false, err
	}

	existing.Apply(Patch{
		Name:        &in.Name,
		SalaryLocal: &in.SalaryLocal,
		SalaryEuros: &in.SalaryEuros,
	})
	if err := r.Update(ctx, &existing); err != nil {
		return nil, false, err
	}

	return &existing, false, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Salary, error) {
	var salaries []Salary
	err := r.conn(ctx).
		Order("id ASC").
		Find(&salaries).Error
	return salaries, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Salary, error) {
	var salary Salary
	err := r.conn(ctx).First(&salary, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*Salary, error) {
	var salary Salary
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&salary, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

// Update writes every mutable column. DisplayedSalary is recomputed here so no
// caller can persist a stale value.
func (r *repository) Update(ctx context.Context, salary *Salary) error {
	salary.recompute()
	if err := salary.checkRange(); err != nil {
		return err
	}
	salary.UpdatedAt = time.Now().UTC()

	res := r.conn(ctx).
		Model(&Salary{}).
		Where("id = ?", salary.ID).
		Updates(map[string]any{
			"name":             salary.Name,
			"salary_local":     salary.SalaryLocal,
			"salary_euros":     salary.SalaryEuros,
			"commission":       salary.Commission,
			"displayed_salary": salary.DisplayedSalary,
			"updated_at":       salary.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.conn(ctx).Delete(&Salary{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
