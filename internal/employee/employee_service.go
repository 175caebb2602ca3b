package employee

import (
	"context"
	"encoding/json"
	"errors"
	employeeerrors "go-employee/internal/employee/errors"
	"go-employee/internal/events"
	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/contextutil"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	AvgSalaryCacheKey = "employees:avg_salary"
	DefaultCacheTTL   = 5 * time.Minute
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error)
	Update(ctx context.Context, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, employeeID string) error
	ListByDepartment(ctx context.Context, department string, q ListByDepartmentQuery) ([]EmployeeResponse, error)
	AverageSalaryByDepartment(ctx context.Context) ([]DepartmentSalaryResponse, error)
	SearchBySkills(ctx context.Context, skills []string) ([]EmployeeResponse, error)
}

type service struct {
	repo      Repository
	publisher EventPublisher
	rdb       *redis.Client
	cacheTTL  time.Duration
	sf        *singleflight.Group
	logger    *zap.Logger

	// cacheGen is bumped by every invalidation; an aggregation started
	// under an older generation must not repopulate the cache.
	cacheMu  sync.Mutex
	cacheGen uint64

	now       func() time.Time
}

func NewService(repo Repository, rdb *redis.Client, cacheTTL time.Duration, logger ...*zap.Logger) Service {
	return NewServiceWithEvents(repo, nil, rdb, cacheTTL, logger...)
}

// NewServiceWithEvents records a lifecycle event after every successful
// write. A nil publisher disables events.
func NewServiceWithEvents(
	repo Repository,
	publisher EventPublisher,
	rdb *redis.Client,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		sf:        &singleflight.Group{},
		logger:    l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("department", req.Department),
	)

	joiningDate, err := parseJoiningDate(req.JoiningDate)
	if err != nil {
		log.Warn("create employee invalid joining_date", zap.String("joining_date", req.JoiningDate))
		return EmployeeResponse{}, err
	}

	skills := req.Skills
	if skills == nil {
		skills = []string{}
	}

	var salary float64
	if req.Salary != nil {
		salary = *req.Salary
	}

	empl := &Employee{
		EmployeeID:  req.EmployeeID,
		Name:        req.Name,
		Department:  req.Department,
		Salary:      salary,
		JoiningDate: joiningDate,
		Skills:      skills,
	}

	created, err := s.repo.Create(ctx, empl)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !isDomainError(mapped) {
			log.Error("create employee persist failed", zap.Error(err))
		} else {
			log.Warn("create employee rejected by store", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}
	if !created {
		log.Warn("create employee duplicate employee_id", zap.String("employee_id", req.EmployeeID))
		return EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
	}

	s.invalidateSalaryCache(ctx)
	s.publish(ctx, events.EmployeeCreated, empl.EmployeeID, empl.Department)

	log.Info("create employee success", zap.String("employee_id", empl.EmployeeID))
	return *Serialize(empl), nil
}

func (s *service) GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("get employee requested", zap.String("employee_id", employeeID))

	empl, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !isDomainError(mapped) {
			log.Error("get employee failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	return *Serialize(empl), nil
}

func (s *service) Update(ctx context.Context, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update employee requested", zap.String("employee_id", employeeID))

	upd, err := toEmployeeUpdate(req)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if upd.IsEmpty() {
		return EmployeeResponse{}, employeeerrors.ErrEmptyUpdate
	}

	modified, err := s.repo.Update(ctx, employeeID, upd)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !isDomainError(mapped) {
			log.Error("update employee persist failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}
	if !modified {
		log.Warn("update employee modified nothing", zap.String("employee_id", employeeID))
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	s.invalidateSalaryCache(ctx)

	empl, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !isDomainError(mapped) {
			log.Error("update employee reload failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	s.publish(ctx, events.EmployeeUpdated, empl.EmployeeID, empl.Department)

	log.Info("update employee success", zap.String("employee_id", employeeID))
	return *Serialize(empl), nil
}

func (s *service) Delete(ctx context.Context, employeeID string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete employee requested", zap.String("employee_id", employeeID))

	deleted, err := s.repo.Delete(ctx, employeeID)
	if err != nil {
		log.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if !deleted {
		return employeeerrors.ErrEmployeeNotFound
	}

	s.invalidateSalaryCache(ctx)
	s.publish(ctx, events.EmployeeDeleted, employeeID, "")

	log.Info("delete employee success", zap.String("employee_id", employeeID))
	return nil
}

func (s *service) ListByDepartment(ctx context.Context, department string, q ListByDepartmentQuery) ([]EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("list employees by department requested",
		zap.String("department", department),
		zap.Int64("skip", q.Skip),
		zap.Int64("limit", q.Limit),
	)

	empls, err := s.repo.FindByDepartment(ctx, department, q.Skip, q.Limit)
	if err != nil {
		log.Error("list employees by department failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return serializeList(empls), nil
}

func (s *service) AverageSalaryByDepartment(ctx context.Context) ([]DepartmentSalaryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, AvgSalaryCacheKey).Result(); err == nil {
			var resp []DepartmentSalaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				log.Debug("average salary served from cache")
				return resp, nil
			}
		} else if err != redis.Nil {
			log.Warn("average salary cache read failed", zap.Error(err))
		}
	}

	// Concurrent misses share one aggregation. It runs detached from the
	// caller's cancellation since other callers may be waiting on it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(AvgSalaryCacheKey, func() (interface{}, error) {
		gen := s.salaryCacheGeneration()

		rows, err := s.repo.AverageSalaryByDepartment(flightCtx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := serializeSalaries(rows)
		s.storeSalaryCache(flightCtx, gen, resp)

		return resp, nil
	})
	if err != nil {
		log.Error("average salary aggregation failed", zap.Error(err))
		return nil, err
	}

	return v.([]DepartmentSalaryResponse), nil
}

func (s *service) SearchBySkills(ctx context.Context, skills []string) ([]EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if len(skills) == 0 {
		return nil, employeeerrors.ErrMissingSkills
	}
	log.Debug("search employees by skills requested", zap.Strings("skills", skills))

	empls, err := s.repo.FindBySkills(ctx, skills)
	if err != nil {
		log.Error("search employees by skills failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return serializeList(empls), nil
}

func (s *service) salaryCacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

// storeSalaryCache writes resp unless a write invalidated the cache after
// the aggregation started.
func (s *service) storeSalaryCache(ctx context.Context, gen uint64, resp []DepartmentSalaryResponse) {
	if s.rdb == nil {
		return
	}
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.cacheGen {
		s.logger.Debug("average salary result is stale, not cached")
		return
	}
	if err := s.rdb.Set(ctx, AvgSalaryCacheKey, jsonData, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("average salary cache write failed", zap.Error(err))
	}
}

func (s *service) invalidateSalaryCache(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cacheGen++
	s.sf.Forget(AvgSalaryCacheKey)

	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.WithoutCancel(ctx), AvgSalaryCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate average salary cache",
			zap.Error(err),
			zap.String("key", AvgSalaryCacheKey),
		)
	}
}

// publish is best-effort: the write already succeeded and the store is not
// assumed to support multi-document transactions.
func (s *service) publish(ctx context.Context, eventType, employeeID, department string) {
	event := events.EmployeeEvent{
		EventType:  eventType,
		RequestID:  contextutil.GetRequestID(ctx),
		EmployeeID: employeeID,
		Department: department,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("record employee event failed",
			zap.String("event_type", eventType),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func isDomainError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}

func toEmployeeUpdate(req UpdateEmployeeRequest) (EmployeeUpdate, error) {
	upd := EmployeeUpdate{
		Name:       req.Name,
		Department: req.Department,
		Salary:     req.Salary,
		Skills:     req.Skills,
	}
	if req.JoiningDate != nil {
		t, err := parseJoiningDate(*req.JoiningDate)
		if err != nil {
			return EmployeeUpdate{}, err
		}
		upd.JoiningDate = &t
	}
	return upd, nil
}

var joiningDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseJoiningDate accepts RFC 3339, a zone-less date-time (read as UTC) or
// a plain date. The result is truncated to the store's millisecond precision.
func parseJoiningDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range joiningDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, employeeerrors.ErrInvalidJoiningDate
}

// ParseSkills splits a comma separated query value, trimming entries and
// dropping empty ones.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
