package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda payloads de relatório já montados, por chave de consulta.
// Relatórios são leitura de dashboard e toleram a janela do TTL.
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func key(report, query string) string { return "report:" + report + ":" + query }

func (c *Cache) GetReport(ctx context.Context, report, query string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key(report, query)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetReport(ctx context.Context, report, query string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, key(report, query), b, ttl).Err()
}

// InvalidateAll remove os relatórios cacheados (chamado após liquidação).
func (c *Cache) InvalidateAll(ctx context.Context) error {
	iter := c.R.Scan(ctx, 0, "report:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.R.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
