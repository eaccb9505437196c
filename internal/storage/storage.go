package storage

import (
	"context"
	"fmt"

	"resume-docx-go/internal/config"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/session"
)

// Storage 存储管理器，聚合会话存储和导出归档
type Storage struct {
	// 会话记录存储
	Store session.Store

	// 导出归档，未配置时为 nil
	Sink session.ExportSink

	// 键值存储 (session.backend = redis)
	Redis *Redis

	// 对象存储 (export.sink = minio)
	MinIO *MinIO

	// 本地目录 (export.sink = file)
	Files *FileSink
}

// NewStorage 按配置创建存储组件。会话存储初始化失败直接返回错误；
// 导出归档是可选的，失败时只记录警告，导出接口会报告依赖不可用。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	log := logger.Component("storage")
	s := &Storage{}
	ttl := cfg.SessionTTL()

	switch cfg.Session.Backend {
	case "redis":
		r, err := NewRedisAdapter(&cfg.Redis, ttl)
		if err != nil {
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
		s.Redis = r
		s.Store = r
		log.Info().Str("address", cfg.Redis.Address).Dur("ttl", ttl).Msg("会话存储: Redis")
	default:
		s.Store = NewMemoryStore(ttl)
		log.Info().Dur("ttl", ttl).Msg("会话存储: 内存")
	}

	switch cfg.Export.Sink {
	case "minio":
		m, err := NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MinIO失败，导出归档不可用")
		} else {
			s.MinIO = m
			s.Sink = m
		}
	case "file":
		f, err := NewFileSink(cfg.Export.Dir)
		if err != nil {
			log.Warn().Err(err).Msg("初始化导出目录失败，导出归档不可用")
		} else {
			s.Files = f
			s.Sink = f
		}
	}
	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}

var (
	_ session.Store      = (*MemoryStore)(nil)
	_ session.Store      = (*Redis)(nil)
	_ session.ExportSink = (*MinIO)(nil)
	_ session.ExportSink = (*FileSink)(nil)
)
