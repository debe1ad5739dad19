// Package orm is a thin fluent layer over gorm used by the repositories.
//
//	var p models.Product
//	err := orm.From(ctx, db).Model(&models.Product{}).Where("id = ?", id).First(&p)
//	if errors.Is(err, orm.ErrNotFound) { ... }
//
// Errors are normalised whatever the SQL driver: a missing row is ErrNotFound,
// a unique constraint violation is ErrDuplicate and a row still referenced by
// a foreign key is ErrReferenced.
package orm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("orm: record not found")
	ErrDuplicate  = errors.New("orm: duplicate key")
	ErrReferenced = errors.New("orm: row is still referenced")
)

type Query struct {
	ctx context.Context
	db  *gorm.DB
}

// From starts a query bound to ctx.
func From(ctx context.Context, db *gorm.DB) *Query {
	return &Query{ctx: ctx, db: db.WithContext(ctx)}
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{ctx: q.ctx, db: db}
}

func (q *Query) Model(v interface{}) *Query {
	return q.with(q.db.Model(v))
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return q.with(q.db.Where(query, args...))
}

func (q *Query) Or(query interface{}, args ...interface{}) *Query {
	return q.with(q.db.Or(query, args...))
}

func (q *Query) Order(value interface{}) *Query {
	return q.with(q.db.Order(value))
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return q.with(q.db.Preload(query, args...))
}

func (q *Query) Limit(n int) *Query {
	return q.with(q.db.Limit(n))
}

// Get loads every matching row into dest.
func (q *Query) Get(dest interface{}) error {
	return Translate(q.db.Find(dest).Error)
}

// First loads the first matching row by primary key order.
func (q *Query) First(dest interface{}) error {
	return Translate(q.db.First(dest).Error)
}

// Exists reports whether any row matches.
func (q *Query) Exists() (bool, error) {
	var n int64
	if err := q.db.Limit(1).Count(&n).Error; err != nil {
		return false, Translate(err)
	}
	return n > 0, nil
}

// Delete removes matching rows and returns how many went.
func (q *Query) Delete(model interface{}) (int64, error) {
	res := q.db.Delete(model)
	return res.RowsAffected, Translate(res.Error)
}

// Cache serves dest from Redis when key is present, otherwise runs the
// query and stores the result for ttl. Without Redis it is a plain Get.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	name := cacheName(key)
	if cache.Get(q.ctx, key, dest) {
		metrics.CacheHits.WithLabelValues(name).Inc()
		return nil
	}
	metrics.CacheMisses.WithLabelValues(name).Inc()

	if err := q.Get(dest); err != nil {
		return err
	}

	_ = cache.Set(q.ctx, key, dest, ttl)
	return nil
}

// Forget drops cached results written by Cache.
func Forget(ctx context.Context, keys ...string) {
	_ = cache.Del(ctx, keys...)
}

// Translate maps driver errors onto ErrNotFound, ErrDuplicate and
// ErrReferenced.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case IsDuplicate(err):
		return errors.Join(ErrDuplicate, err)
	case IsForeignKey(err):
		return errors.Join(ErrReferenced, err)
	}
	return err
}

// IsDuplicate reports a unique-constraint violation. gorm translates most
// dialects; the message checks cover the ones it doesn't.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// IsForeignKey reports a foreign-key violation, as worded by sqlite, postgres,
// mysql and sqlserver.
func IsForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrReferenced) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "reference constraint")
}

// cacheName is the metrics label for key: its first colon segment.
func cacheName(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
