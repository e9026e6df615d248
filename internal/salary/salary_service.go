package salary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go-salary/internal/events"
	"go-salary/internal/messaging/kafka"
	"go-salary/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	SalaryListCacheKey   = "salaries:list"
	SalaryListVersionKey = "salaries:list:version"
	SalaryListCacheTTL   = 10 * time.Minute

	// ON CONFLICT DO NOTHING absorbs the unique violation, so the only race
	// left is the conflicting row being deleted before it is locked.
	maxUpsertAttempts = 2
)

//go:generate mockgen -source=salary_service.go -destination=mock/salary_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateSalaryRequest) (SalaryResponse, error)
	GetAll(ctx context.Context) ([]SalaryResponse, error)
	GetByID(ctx context.Context, id int64) (SalaryResponse, error)
	Update(ctx context.Context, id int64, req UpdateSalaryRequest) (SalaryResponse, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("salary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateSalaryRequest) (SalaryResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("upsert salary requested", zap.String("email", req.Email))

	in := UpsertInput{
		Name:        req.Name,
		Email:       req.Email,
		SalaryLocal: derefDecimal(req.SalaryLocal),
		SalaryEuros: derefDecimal(req.SalaryEuros),
	}

	var (
		salary  *Salary
		created bool
		err     error
	)
	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		salary, created, err = s.upsert(ctx, rid, in)
		if !errors.Is(err, errUpsertRowVanished) {
			break
		}
		log.Warn("upsert salary row deleted concurrently, retrying",
			zap.String("email", in.Email),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		log.Error("upsert salary failed", zap.String("email", in.Email), zap.Error(err))
		return SalaryResponse{}, mapRepositoryError(err)
	}

	s.invalidateListCache(ctx)

	log.Info("upsert salary success",
		zap.Int64("salary_id", salary.ID),
		zap.Bool("created", created),
	)
	return mapToResponse(*salary), nil
}

func (s *service) upsert(ctx context.Context, rid string, in UpsertInput) (*Salary, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	salary, created, err := s.repo.WithTx(tx).UpsertByEmail(ctx, in)
	if err != nil {
		return nil, false, err
	}

	eventType := events.SalaryUpdatedEventType
	if created {
		eventType = events.SalaryCreatedEventType
	}
	if err := s.enqueueEvent(ctx, tx, rid, eventType, *salary); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return salary, created, nil
}

// ListCacheKey returns the list cache key for one cache generation. Every
// write bumps the generation, so a list loaded before the write can never be
// served after it.
func ListCacheKey(version int64) string {
	return SalaryListCacheKey + ":v" + strconv.FormatInt(version, 10)
}

func (s *service) GetAll(ctx context.Context) ([]SalaryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	// -1 disables caching for this call
	version := int64(-1)
	if s.rdb != nil {
		v, err := s.listCacheVersion(ctx)
		if err != nil {
			log.Warn("read salary list cache version failed", zap.Error(err))
		} else {
			version = v
			if cached, err := s.rdb.Get(ctx, ListCacheKey(v)).Result(); err == nil {
				var resp []SalaryResponse
				if json.Unmarshal([]byte(cached), &resp) == nil {
					return resp, nil
				}
			}
		}
	}

	// Singleflight supaya cache miss bersamaan hanya query DB sekali
	v, err, _ := s.sf.Do(ListCacheKey(version), func() (any, error) {
		salaries, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(salaries)
		if version >= 0 {
			s.cacheList(ctx, version, resp)
		}
		return resp, nil
	})
	if err != nil {
		log.Error("get all salaries failed", zap.Error(err))
		return nil, err
	}

	return v.([]SalaryResponse), nil
}

func (s *service) listCacheVersion(ctx context.Context) (int64, error) {
	v, err := s.rdb.Get(ctx, SalaryListVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// cacheList stores resp only when no write bumped the generation while the
// list was loading.
func (s *service) cacheList(ctx context.Context, version int64, resp []SalaryResponse) {
	log := contextutil.GetLogger(ctx, s.logger)

	current, err := s.listCacheVersion(ctx)
	if err != nil {
		log.Warn("read salary list cache version failed", zap.Error(err))
		return
	}
	if current != version {
		log.Debug("salary list changed while loading, not cached",
			zap.Int64("loaded_version", version),
			zap.Int64("current_version", current),
		)
		return
	}

	jsonData, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, ListCacheKey(version), jsonData, SalaryListCacheTTL).Err(); err != nil {
		log.Warn("cache salary list failed", zap.Error(err))
	}
}

func (s *service) GetByID(ctx context.Context, id int64) (SalaryResponse, error) {
	salary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Debug("get salary by id failed",
			zap.Int64("salary_id", id),
			zap.Error(err),
		)
		return SalaryResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*salary), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateSalaryRequest) (SalaryResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update salary requested", zap.Int64("salary_id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update salary begin tx failed", zap.Error(err))
		return SalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	salary, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		log.Warn("update salary fetch existing failed", zap.Int64("salary_id", id), zap.Error(err))
		return SalaryResponse{}, mapRepositoryError(err)
	}

	salary.Apply(req.toPatch())

	if err := qtx.Update(ctx, salary); err != nil {
		log.Error("update salary persist failed", zap.Error(err))
		return SalaryResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueEvent(ctx, tx, rid, events.SalaryUpdatedEventType, *salary); err != nil {
		log.Error("update salary outbox persist failed", zap.Error(err))
		return SalaryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("update salary commit failed", zap.Error(err))
		return SalaryResponse{}, err
	}

	s.invalidateListCache(ctx)

	log.Info("update salary success", zap.Int64("salary_id", id))
	return mapToResponse(*salary), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete salary requested", zap.Int64("salary_id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("delete salary begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	salary, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.Delete(ctx, id); err != nil {
		log.Error("delete salary failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.enqueueEvent(ctx, tx, rid, events.SalaryDeletedEventType, *salary); err != nil {
		log.Error("delete salary outbox persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("delete salary commit failed", zap.Error(err))
		return err
	}

	s.invalidateListCache(ctx)

	log.Info("delete salary success", zap.Int64("salary_id", id))
	return nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, rid, eventType string, salary Salary) error {
	if s.outbox == nil {
		return nil
	}

	event := events.SalaryChangedEvent{
		EventType:  eventType,
		RequestID:  rid,
		SalaryID:   salary.ID,
		Email:      salary.Email,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != events.SalaryDeletedEventType {
		event.DisplayedSalary = salary.DisplayedSalary.StringFixed(moneyScale)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "salary",
		AggregateID:   strconv.FormatInt(salary.ID, 10),
		EventType:     eventType,
		Topic:         events.SalaryChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	version, err := s.rdb.Incr(ctx, SalaryListVersionKey).Result()
	if err != nil {
		s.logger.Error("failed to invalidate salary list cache",
			zap.Error(err),
			zap.String("key", SalaryListVersionKey),
		)
		return
	}
	// the previous generation is unreachable now; drop it instead of waiting for the TTL
	if err := s.rdb.Del(ctx, ListCacheKey(version-1)).Err(); err != nil {
		s.logger.Warn("failed to drop stale salary list cache",
			zap.Error(err),
			zap.String("key", ListCacheKey(version-1)),
		)
	}
}

func mapToResponse(salary Salary) SalaryResponse {
	return SalaryResponse{
		ID:              salary.ID,
		Name:            salary.Name,
		Email:           salary.Email,
		SalaryLocal:     money(salary.SalaryLocal),
		SalaryEuros:     money(salary.SalaryEuros),
		Commission:      money(salary.Commission),
		DisplayedSalary: money(salary.DisplayedSalary),
		CreatedAt:       salary.CreatedAt,
		UpdatedAt:       salary.UpdatedAt,
	}
}

func mapToListResponse(salaries []Salary) []SalaryResponse {
	res := make([]SalaryResponse, len(salaries))
	for i, salary := range salaries {
		res[i] = mapToResponse(salary)
	}
	return res
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(moneyScale))
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
