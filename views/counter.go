package views

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	viewsKey       = "bio:site-views"
	counterTimeout = 3 * time.Second
)

// ViewCount is the single-row local tier of the counter. It only carries
// traffic while the remote store is unreachable or unconfigured.
type ViewCount struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (ViewCount) TableName() string {
	return "view_counts"
}

// Counter maintains the page view count across a remote key-value tier and
// a machine-local database fallback. The remote tier increments atomically;
// the local tier serializes its read-modify-write behind a process mutex,
// which is enough for the single-process deployments the fallback exists
// for.
type Counter struct {
	client *redis.Client
	db     *gorm.DB

	mu sync.Mutex
}

// NewCounter builds a counter over the given tiers. Either may be nil.
func NewCounter(client *redis.Client, db *gorm.DB) (*Counter, error) {
	if db != nil {
		if err := db.AutoMigrate(&ViewCount{}); err != nil {
			return nil, err
		}
	}
	return &Counter{client: client, db: db}, nil
}

func (c *Counter) counterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), counterTimeout)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= counterTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, counterTimeout)
}

// Current returns the stored count, defaulting to zero when neither tier
// has a value. Reads never surface an error.
func (c *Counter) Current(ctx context.Context) int64 {
	if c.client != nil {
		ctx, cancel := c.counterContext(ctx)
		defer cancel()

		value, err := c.client.Get(ctx, viewsKey).Int64()
		if err == nil {
			return value
		}
		if errors.Is(err, redis.Nil) {
			return 0
		}
		log.Printf("views: remote read failed, using local tier: %v", err)
	}
	return c.localCurrent()
}

// Increment adds one view and returns the new total. The remote tier uses
// an atomic INCR; on remote failure the local tier takes over.
func (c *Counter) Increment(ctx context.Context) (int64, error) {
	if c.client != nil {
		incrCtx, cancel := c.counterContext(ctx)
		defer cancel()

		value, err := c.client.Incr(incrCtx, viewsKey).Result()
		if err == nil {
			return value, nil
		}
		log.Printf("views: remote increment failed, using local tier: %v", err)
	}
	return c.localIncrement()
}

// Set overwrites the count. Administrative override, validated by the
// handler.
func (c *Counter) Set(ctx context.Context, value int64) (int64, error) {
	if c.client != nil {
		setCtx, cancel := c.counterContext(ctx)
		defer cancel()

		err := c.client.Set(setCtx, viewsKey, value, 0).Err()
		if err == nil {
			return value, nil
		}
		log.Printf("views: remote set failed, using local tier: %v", err)
	}
	if err := c.localSet(value); err != nil {
		return 0, err
	}
	return value, nil
}

func (c *Counter) localCurrent() int64 {
	if c.db == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var row ViewCount
	if err := c.db.First(&row, "id = ?", 1).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("views: local read failed: %v", err)
		}
		return 0
	}
	return row.Views
}

func (c *Counter) localIncrement() (int64, error) {
	if c.db == nil {
		return 0, errors.New("views: no counter storage available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row := ViewCount{ID: 1}
	if err := c.db.FirstOrCreate(&row, "id = ?", 1).Error; err != nil {
		return 0, err
	}
	if err := c.db.Model(&ViewCount{}).
		Where("id = ?", 1).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return 0, err
	}
	var updated ViewCount
	if err := c.db.First(&updated, "id = ?", 1).Error; err != nil {
		return 0, err
	}
	return updated.Views, nil
}

func (c *Counter) localSet(value int64) error {
	if c.db == nil {
		return errors.New("views: no counter storage available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row := ViewCount{ID: 1, Views: value}
	if err := c.db.FirstOrCreate(&row, "id = ?", 1).Error; err != nil {
		return err
	}
	return c.db.Model(&ViewCount{}).
		Where("id = ?", 1).
		UpdateColumn("views", value).Error
}
