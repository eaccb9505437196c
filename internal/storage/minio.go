package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"resume-docx-go/internal/config"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/tracing"
)

// MinIO 导出归档：把导出的文档/记录上传到存储桶，返回预签名下载链接
type MinIO struct {
	client        *minio.Client
	cfg           *config.MinIOConfig
	bucket        string
	presignExpiry time.Duration
	logger        zerolog.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("MinIO存储桶名称不能为空")
	}
	log := logger.Component("minio")
	log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:        client,
		cfg:           cfg,
		bucket:        cfg.BucketName,
		presignExpiry: config.GetDuration(cfg.PresignExpiry, 15*time.Minute),
		logger:        log,
	}

	if err := m.ensureBucketExists(ctx); err != nil {
		return nil, err
	}

	// 设置生命周期规则
	if cfg.ExportExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, "expire-exports", cfg.ExportExpireDays); err != nil {
			log.Warn().Err(err).Msg("设置存储桶生命周期失败")
		}
	}
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", m.bucket, err)
	}
	if exists {
		m.logger.Debug().Str("bucket", m.bucket).Msg("存储桶已存在")
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", m.bucket, err)
	}
	m.logger.Info().Str("bucket", m.bucket).Msg("存储桶创建成功")
	return nil
}

// setupBucketLifecycle 为导出桶设置过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, m.bucket, cfg)
}

// objectKey 导出对象统一放在 exports/ 前缀下
func objectKey(name string) string {
	return path.Join("exports", name)
}

// Put 上传导出文件并返回预签名下载链接，实现 session.ExportSink
func (m *MinIO) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := objectKey(name)
	ctx, span := tracing.Start(ctx, "minio.PutExport",
		attribute.String("minio.bucket", m.bucket),
		attribute.String("minio.object", tracing.SafeFilename(key)),
		attribute.Int("minio.size", len(data)),
	)
	defer span.End()

	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.bucket, key, err)
	}
	m.logger.Debug().Str("object", key).Str("etag", info.ETag).Int64("size", info.Size).Msg("导出文件已上传")

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(name)))
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.presignExpiry, params)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return u.String(), nil
}
