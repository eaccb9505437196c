package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"resume-docx-go/internal/codec"
	"resume-docx-go/internal/config"
	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/tracing"
	"resume-docx-go/internal/types"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
	ttl    time.Duration
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig, ttl time.Duration) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries: cfg.MaxRetries,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if cfg.EnableTracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return NewRedisWithClient(client, cfg, ttl), nil
}

// NewRedisWithClient 使用已有客户端构造，主要用于测试
func NewRedisWithClient(client *redis.Client, cfg *config.RedisConfig, ttl time.Duration) *Redis {
	return &Redis{Client: client, config: cfg, ttl: ttl}
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

func recordKey(sessionID string) string {
	return fmt.Sprintf(constants.KeySessionRecord, sessionID)
}

// Save 以 JSON 保存会话记录并刷新过期时间，实现 session.Store
func (r *Redis) Save(ctx context.Context, sessionID string, rec *types.ResumeRecord) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	key := recordKey(sessionID)
	ctx, span := tracing.Start(ctx, "redis.SaveRecord", attribute.String("redis.key", tracing.SafeRedisKey(key)))
	defer span.End()

	data, err := codec.Marshal(rec, codec.FormatJSON)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return fmt.Errorf("序列化会话记录失败: %w", err)
	}
	if err := r.Client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入会话记录 %s 失败: %w", key, err)
	}
	span.SetAttributes(attribute.Int("redis.value_bytes", len(data)))
	return nil
}

// Load 读取会话记录，实现 session.Store
func (r *Redis) Load(ctx context.Context, sessionID string) (*types.ResumeRecord, bool, error) {
	if r.Client == nil {
		return nil, false, fmt.Errorf("redis client is not initialized")
	}
	key := recordKey(sessionID)
	ctx, span := tracing.Start(ctx, "redis.LoadRecord", attribute.String("redis.key", tracing.SafeRedisKey(key)))
	defer span.End()

	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Bool("redis.hit", false))
		return nil, false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, false, fmt.Errorf("读取会话记录 %s 失败: %w", key, err)
	}
	span.SetAttributes(attribute.Bool("redis.hit", true))

	rec, err := codec.Unmarshal(data, codec.FormatJSON)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, false, fmt.Errorf("会话记录 %s 已损坏: %w", key, err)
	}
	return rec, true, nil
}

// Delete 删除会话记录，实现 session.Store
func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Del(ctx, recordKey(sessionID)).Err()
}
