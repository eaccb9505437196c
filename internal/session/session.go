package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"

	"resume-docx-go/internal/codec"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/tracing"
	"resume-docx-go/internal/types"
)

// Store 会话记录存储。Save 整体替换旧记录；Load 在记录不存在时返回 (nil, false, nil)
type Store interface {
	Save(ctx context.Context, sessionID string, rec *types.ResumeRecord) error
	Load(ctx context.Context, sessionID string) (*types.ResumeRecord, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// ExportSink 导出文件归档目标，返回可访问的位置（路径或下载链接）
type ExportSink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Session 一个用户会话：持有当前记录，负责 导入→发布、读取→导出 的编排。
// 导入时先完整构建新记录再整体替换，失败不影响已加载的记录。
type Session struct {
	id    string
	conv  *Converter
	store Store
	sink  ExportSink

	// 串行化同一会话ID上的导入/重置。由 Manager 打开的会话按ID共享同一把锁
	mu *sync.Mutex
}

// New 创建会话
func New(id string, conv *Converter, store Store, sink ExportSink) *Session {
	return &Session{id: id, conv: conv, store: store, sink: sink, mu: &sync.Mutex{}}
}

// ID 会话ID
func (s *Session) ID() string {
	return s.id
}

// Import 解析上传内容并替换当前记录
func (s *Session) Import(ctx context.Context, data []byte, name string, kind ImportKind) (*types.ResumeRecord, error) {
	ctx, span := tracing.Start(ctx, "session.Import",
		attribute.String("session.id", s.id),
		attribute.String("import.kind", string(resolveKind(kind, name))),
		attribute.String("import.file", tracing.SafeFilename(name)),
		attribute.Int("import.bytes", len(data)),
	)
	defer span.End()
	log := logger.Ctx(ctx).With().Str("session_id", s.id).Logger()

	rec, err := s.conv.Parse(ctx, data, name, kind)
	if err != nil {
		var wrapped error
		if errors.Is(err, ErrDependencyMissing) {
			wrapped = newDependencyError(s.id, "import", err.Error())
			tracing.RecordError(span, wrapped, tracing.ErrorTypeDependency)
		} else {
			wrapped = newMalformedError(s.id, "import", err)
			tracing.RecordError(span, wrapped, tracing.ErrorTypeMalformedInput)
		}
		log.Warn().Err(err).Str("file", tracing.SafeFilename(name)).Msg("导入失败，保留原有记录")
		return nil, wrapped
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, s.id, rec); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, newStoreError(s.id, "import", err)
	}

	summary := rec.Summarize()
	span.SetAttributes(
		attribute.Int("record.skills", summary.SkillCount),
		attribute.Int("record.education", summary.EducationCount),
		attribute.Int("record.experience", summary.ExperienceCount),
	)
	log.Info().
		Str("name", tracing.MaskPII(summary.Name)).
		Int("skills", summary.SkillCount).
		Int("education", summary.EducationCount).
		Int("experience", summary.ExperienceCount).
		Msg("简历导入完成")
	return rec.Clone(), nil
}

// Record 当前记录的副本；未加载时返回 ErrNoRecord
func (s *Session) Record(ctx context.Context) (*types.ResumeRecord, error) {
	rec, ok, err := s.store.Load(ctx, s.id)
	if err != nil {
		return nil, newStoreError(s.id, "load", err)
	}
	if !ok || rec == nil {
		return nil, newNoRecordError(s.id, "load")
	}
	return rec, nil
}

// Reset 清空当前记录，准备加载新文件
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, s.id); err != nil {
		return newStoreError(s.id, "reset", err)
	}
	logger.Ctx(ctx).Debug().Str("session_id", s.id).Msg("会话记录已清空")
	return nil
}

// ExportDocx 把当前记录导出为 docx
func (s *Session) ExportDocx(ctx context.Context) (Export, error) {
	ctx, span := tracing.Start(ctx, "session.ExportDocx", attribute.String("session.id", s.id))
	defer span.End()

	rec, err := s.Record(ctx)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return Export{}, err
	}
	exp, err := s.conv.RenderDocx(rec)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return Export{}, &OpError{SessionID: s.id, Op: "export_docx", BaseErr: err}
	}
	span.SetAttributes(attribute.Int("export.bytes", len(exp.Data)))
	return exp, nil
}

// ExportRecord 把当前记录序列化导出
func (s *Session) ExportRecord(ctx context.Context, format codec.Format) (Export, error) {
	rec, err := s.Record(ctx)
	if err != nil {
		return Export{}, err
	}
	exp, err := s.conv.RenderRecord(rec, format)
	if err != nil {
		return Export{}, &OpError{SessionID: s.id, Op: "export_record", BaseErr: err}
	}
	return exp, nil
}

// Preview 生成当前记录的预览
func (s *Session) Preview(ctx context.Context, mode PreviewMode) (Preview, error) {
	rec, err := s.Record(ctx)
	if err != nil {
		return Preview{}, err
	}
	p, err := s.conv.RenderPreview(ctx, rec, mode)
	if err != nil {
		return Preview{}, &OpError{SessionID: s.id, Op: "preview", BaseErr: err}
	}
	return p, nil
}

// Archive 把导出结果写入归档目标，返回其位置
func (s *Session) Archive(ctx context.Context, exp Export) (string, error) {
	if s.sink == nil {
		return "", newDependencyError(s.id, "archive", "未配置导出归档")
	}
	ctx, span := tracing.Start(ctx, "session.Archive", attribute.String("session.id", s.id))
	defer span.End()

	name := s.id + "/" + exp.Filename
	location, err := s.sink.Put(ctx, name, exp.ContentType, exp.Data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", &OpError{SessionID: s.id, Op: "archive", BaseErr: err}
	}
	return location, nil
}

// sessionLockStripes Manager 中会话锁的分段数
const sessionLockStripes = 64

// Manager 创建和查找会话。每次 Get 都返回新的 Session 对象，
// 同一ID的对象通过分段锁共享互斥，保证跨请求的导入/重置串行执行。
type Manager struct {
	conv  *Converter
	store Store
	sink  ExportSink
	locks [sessionLockStripes]sync.Mutex
}

// NewManager 创建会话管理器，sink 可以为 nil
func NewManager(conv *Converter, store Store, sink ExportSink) *Manager {
	return &Manager{conv: conv, store: store, sink: sink}
}

// Create 分配一个新的会话
func (m *Manager) Create() (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成会话ID失败: %w", err)
	}
	return m.open(id.String()), nil
}

// Get 按ID打开会话。会话本身无状态，记录是否存在由 Store 决定
func (m *Manager) Get(id string) (*Session, error) {
	parsed, err := uuid.FromString(id)
	if err != nil || parsed.Version() != uuid.V7 {
		return nil, &OpError{SessionID: id, Op: "get", BaseErr: ErrSessionNotFound}
	}
	return m.open(parsed.String()), nil
}

func (m *Manager) open(id string) *Session {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	s := New(id, m.conv, m.store, m.sink)
	s.mu = &m.locks[h.Sum32()%sessionLockStripes]
	return s
}

// HasSink 是否配置了导出归档
func (m *Manager) HasSink() bool {
	return m.sink != nil
}
