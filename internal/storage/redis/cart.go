// Package redis stores per-user carts in Redis hashes. The hash maps
// product id to quantity; the catalog join happens in the cart service.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mateusvc/loja-escolar/internal/domain/cart"
)

// cartTTL bounds how long an abandoned cart lingers. Refreshed on every
// write.
const cartTTL = 7 * 24 * time.Hour

// NewClient creates a go-redis client from a redis:// URL.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis URL")
	}
	return redis.NewClient(opts), nil
}

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by Redis.
type CartRepository struct {
	client *redis.Client
}

// NewCartRepository returns a CartRepository that uses the given client.
func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client}
}

func cartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

// Get returns the product id -> quantity map for a user. A missing key is
// an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID int64) (map[int64]int, error) {
	raw, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "reading cart of user %d", userID)
	}

	out := make(map[int64]int, len(raw))
	for field, value := range raw {
		pid, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue // skip corrupt fields rather than failing the whole cart
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty <= 0 {
			continue
		}
		out[pid] = qty
	}
	return out, nil
}

// SetQuantity stores the absolute quantity for one product and refreshes
// the cart TTL.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	key := cartKey(userID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(productID, 10), qty)
	pipe.Expire(ctx, key, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "writing cart of user %d", userID)
	}
	return nil
}

// Remove deletes one product from the cart.
func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	err := r.client.HDel(ctx, cartKey(userID), strconv.FormatInt(productID, 10)).Err()
	if err != nil {
		return errors.Wrapf(err, "removing item from cart of user %d", userID)
	}
	return nil
}

// Clear deletes the whole cart.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return errors.Wrapf(err, "clearing cart of user %d", userID)
	}
	return nil
}
