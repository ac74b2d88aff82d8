package services

import (
	"context"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/redis"
)

// HealthService answers liveness checks by touching the backing stores.
type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, redisAdapter redis.RedisAdapter) *HealthService {
	return &HealthService{db: db, redis: redisAdapter}
}

func (s *HealthService) Get() error {
	ctx := context.Background()
	if s.db != nil {
		if sqlDB, err := s.db.Read(ctx).DB(); err == nil {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
		}
	}
	if s.redis != nil {
		if err := s.redis.Client().Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
