package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"

// SnapshotCache stores clinic snapshots between mutations. Get returns (nil, nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, clinicID uuid.UUID) (*models.DatabaseState, error)
	Put(ctx context.Context, clinicID uuid.UUID, state *models.DatabaseState) error
	Invalidate(ctx context.Context, clinicID uuid.UUID) error
}

// LedgerPublisher receives every committed ledger entry.
type LedgerPublisher interface {
	PublishLedgerEntry(ctx context.Context, entry models.Transaction) error
}

type Options struct {
	Policy        Policy
	ConflictScope ConflictScope
	// Location decides which calendar day "today" is for care plan resets.
	Location  *time.Location
	Now       func() time.Time
	Cache     SnapshotCache
	Publisher LedgerPublisher
}

// Engine runs every loyalty operation against a Store. Each mutation is one Atomic unit.
type Engine struct {
	store     repository.Store
	policy    Policy
	scope     ConflictScope
	loc       *time.Location
	now       func() time.Time
	cache     SnapshotCache
	publisher LedgerPublisher

	tracer         trace.Tracer
	pointsEarned   metric.Int64Counter
	pointsRedeemed metric.Int64Counter
	failures       metric.Int64Counter
}

func NewEngine(store repository.Store, opts Options) *Engine {
	e := &Engine{
		store:     store,
		policy:    opts.Policy,
		scope:     opts.ConflictScope,
		loc:       opts.Location,
		now:       opts.Now,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		tracer:    otel.Tracer(instrumentationName),
	}
	if len(e.policy.Tiers) == 0 {
		e.policy = DefaultPolicy()
	}
	if e.scope == "" {
		e.scope = ConflictScopeClinic
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}

	meter := otel.Meter(instrumentationName)
	e.pointsEarned = counter(meter, "loyalty.points.earned", "Points credited by EARN transactions")
	e.pointsRedeemed = counter(meter, "loyalty.points.redeemed", "Points debited by REDEEM transactions")
	e.failures = counter(meter, "loyalty.operation.failures", "Operations rejected by a business rule")
	return e
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("metric instrument unavailable", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}

func (e *Engine) Policy() Policy { return e.policy }

// Today returns the current calendar date in the clinic time zone.
func (e *Engine) Today() string {
	return e.now().In(e.loc).Format(time.DateOnly)
}

// mutation carries the state of one Atomic unit.
type mutation struct {
	tx      repository.Store
	message string
	ledger  []models.Transaction
	// scope is the clinic whose snapshot is returned; nil returns every clinic.
	scope *uuid.UUID
	// evict lists clinics whose cached snapshot must be dropped without refresh.
	evict []uuid.UUID
}

func (m *mutation) done(format string, args ...interface{}) error {
	m.message = fmt.Sprintf(format, args...)
	return nil
}

// mutate runs fn atomically and shapes its outcome into a Result. Business failures come back
// as an unsuccessful Result; storage failures come back as an error.
func (e *Engine) mutate(ctx context.Context, op string, scope *uuid.UUID, fn func(m *mutation) error) (*Result, error) {
	attrs := []attribute.KeyValue{attribute.String("loyalty.op", op)}
	if scope != nil {
		attrs = append(attrs, attribute.String("clinic.id", scope.String()))
	}
	ctx, span := e.tracer.Start(ctx, "loyalty."+op, trace.WithAttributes(attrs...))
	defer span.End()

	var m *mutation
	err := e.store.Atomic(ctx, func(tx repository.Store) error {
		m = &mutation{tx: tx, scope: scope}
		return fn(m)
	})

	var f *Failure
	if errors.As(err, &f) {
		span.SetAttributes(attribute.String("loyalty.error", string(f.Code)))
		e.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("loyalty.op", op), attribute.String("code", string(f.Code))))
		slog.Info("operation rejected", "action", op, "code", f.Code, "message", f.Message)
		return f.Result(), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e.afterCommit(ctx, m)

	state, err := e.refresh(ctx, m.scope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Success: true, Message: m.message, UpdatedData: state}, nil
}

// afterCommit records metrics and forwards ledger entries. Failures here are logged only;
// the write is already durable.
func (e *Engine) afterCommit(ctx context.Context, m *mutation) {
	for _, entry := range m.ledger {
		attrs := metric.WithAttributes(
			attribute.String("clinic.id", entry.ClinicID.String()),
			attribute.String("category", string(entry.Category)),
		)
		if entry.PointsEarned >= 0 {
			e.pointsEarned.Add(ctx, entry.PointsEarned, attrs)
		} else {
			e.pointsRedeemed.Add(ctx, -entry.PointsEarned, attrs)
		}

		if e.publisher == nil {
			continue
		}
		if err := e.publisher.PublishLedgerEntry(ctx, entry); err != nil {
			slog.Error("ledger event publish failed", "clinic_id", entry.ClinicID.String(), "transaction_id", entry.ID.String(), "error", err)
		}
	}

	if e.cache == nil {
		return
	}
	for _, id := range m.evict {
		if err := e.cache.Invalidate(ctx, id); err != nil {
			slog.Warn("snapshot cache invalidate failed", "clinic_id", id.String(), "error", err)
		}
	}
}

// refresh reads the snapshot from the store and writes it through to the cache.
func (e *Engine) refresh(ctx context.Context, scope *uuid.UUID) (*models.DatabaseState, error) {
	state, err := e.store.Snapshot(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if e.cache != nil && scope != nil {
		if err := e.cache.Put(ctx, *scope, state); err != nil {
			slog.Warn("snapshot cache write failed", "clinic_id", scope.String(), "error", err)
		}
	}
	return state, nil
}

// GetData returns the snapshot of one clinic, or of every clinic when clinicID is nil.
// Clinic snapshots are served from the cache when present.
func (e *Engine) GetData(ctx context.Context, clinicID *uuid.UUID) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "loyalty.GetData")
	defer span.End()

	if clinicID != nil {
		if _, err := e.store.GetClinic(ctx, *clinicID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return (&Failure{Code: CodeAuth, Message: "Unknown clinic"}).Result(), nil
			}
			return nil, fmt.Errorf("GetData: %w", err)
		}
		if e.cache != nil {
			state, err := e.cache.Get(ctx, *clinicID)
			if err != nil {
				slog.Warn("snapshot cache read failed", "clinic_id", clinicID.String(), "error", err)
			} else if state != nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return &Result{Success: true, Message: "Snapshot loaded", UpdatedData: state}, nil
			}
		}
	}

	state, err := e.refresh(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("GetData: %w", err)
	}
	return &Result{Success: true, Message: "Snapshot loaded", UpdatedData: state}, nil
}

func (e *Engine) loadClinic(ctx context.Context, tx repository.Store, clinicID uuid.UUID) (*models.Clinic, error) {
	clinic, err := tx.GetClinic(ctx, clinicID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(CodeAuth, "Unknown clinic")
	}
	if err != nil {
		return nil, fmt.Errorf("load clinic: %w", err)
	}
	return clinic, nil
}

// loadMember returns a user that must belong to clinicID. Missing and foreign users are both
// authorization failures so callers cannot probe other tenants.
func (e *Engine) loadMember(ctx context.Context, tx repository.Store, clinicID, userID uuid.UUID) (*models.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(CodeAuth, "User is not registered with this clinic")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.ClinicID != clinicID {
		return nil, fail(CodeAuth, "User is not registered with this clinic")
	}
	return user, nil
}

// loadPatient is loadMember restricted to PATIENT users.
func (e *Engine) loadPatient(ctx context.Context, tx repository.Store, clinicID, userID uuid.UUID) (*models.User, error) {
	user, err := e.loadMember(ctx, tx, clinicID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RolePatient {
		return nil, fail(CodeAuth, "%s is not a patient of this clinic", user.Name)
	}
	return user, nil
}
