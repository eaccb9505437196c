package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"resume-docx-go/internal/codec"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/session"
	"resume-docx-go/internal/tracing"
	"resume-docx-go/internal/types"
)

// SessionHandler 会话接口：创建会话、导入、预览、导出、重置
type SessionHandler struct {
	manager        *session.Manager
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(manager *session.Manager, maxUploadMB int) *SessionHandler {
	return &SessionHandler{
		manager:        manager,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger.Component("session_handler"),
	}
}

// CreateSessionResponse 创建会话响应
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ImportResponse 导入响应
type ImportResponse struct {
	SessionID string        `json:"session_id"`
	Filename  string        `json:"filename"`
	Summary   types.Summary `json:"summary"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return consts.StatusNotFound
	case errors.Is(err, session.ErrNoRecord):
		return consts.StatusConflict
	case errors.Is(err, session.ErrMalformedInput):
		return consts.StatusBadRequest
	case errors.Is(err, session.ErrDependencyMissing):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

func (h *SessionHandler) fail(c context.Context, ctx *app.RequestContext, err error) {
	code := statusFor(err)
	event := h.logger.Warn()
	if code >= consts.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).Int("status", code).Str("path", string(ctx.Path())).Msg("请求处理失败")
	ctx.JSON(code, ErrorResponse{Error: session.UserMessage(err)})
}

func (h *SessionHandler) session(ctx *app.RequestContext) (*session.Session, error) {
	return h.manager.Get(ctx.Param("id"))
}

// CreateSession POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c context.Context, ctx *app.RequestContext) {
	s, err := h.manager.Create()
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, CreateSessionResponse{SessionID: s.ID()})
}

// Import POST /api/v1/sessions/:id/import，multipart 字段 file，可选 kind
func (h *SessionHandler) Import(c context.Context, ctx *app.RequestContext) {
	s, err := h.session(ctx)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, ErrorResponse{Error: "文件未找到"})
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		ctx.JSON(consts.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("文件超过大小限制 (%d MB)", h.maxUploadBytes>>20),
		})
		return
	}

	kind, err := session.ParseImportKind(ctx.PostForm("kind"))
	if err != nil {
		h.fail(c, ctx, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, ErrorResponse{Error: "打开文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, ErrorResponse{Error: "读取上传文件失败"})
		return
	}

	rec, err := s.Import(c, data, fileHeader.Filename, kind)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, ImportResponse{
		SessionID: s.ID(),
		Filename:  fileHeader.Filename,
		Summary:   rec.Summarize(),
	})
}

// GetRecord GET /api/v1/sessions/:id/record?format=json|yaml
func (h *SessionHandler) GetRecord(c context.Context, ctx *app.RequestContext) {
	s, err := h.session(ctx)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	format, err := codec.ParseFormat(ctx.DefaultQuery("format", string(codec.FormatJSON)))
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	exp, err := s.ExportRecord(c, format)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	attachment(ctx, exp)
}

// Preview GET /api/v1/sessions/:id/preview?mode=auto|html|markdown
func (h *SessionHandler) Preview(c context.Context, ctx *app.RequestContext) {
	s, err := h.session(ctx)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	p, err := s.Preview(c, session.PreviewMode(ctx.DefaultQuery("mode", string(session.PreviewAuto))))
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	ctx.Header("X-Preview-Native", strconv.FormatBool(p.Native))
	ctx.Data(consts.StatusOK, p.ContentType, []byte(p.Body))
}

// ExportDocx GET /api/v1/sessions/:id/export/docx?archive=true
func (h *SessionHandler) ExportDocx(c context.Context, ctx *app.RequestContext) {
	c, span := tracing.Start(c, "http.ExportDocx", attribute.String("session.id", ctx.Param("id")))
	defer span.End()

	s, err := h.session(ctx)
	if err != nil {
		tracing.RecordHTTPError(span, err, statusFor(err))
		h.fail(c, ctx, err)
		return
	}
	exp, err := s.ExportDocx(c)
	if err != nil {
		tracing.RecordHTTPError(span, err, statusFor(err))
		h.fail(c, ctx, err)
		return
	}

	if archive, _ := strconv.ParseBool(ctx.Query("archive")); archive {
		location, err := s.Archive(c, exp)
		if err != nil {
			tracing.RecordHTTPError(span, err, statusFor(err))
			h.fail(c, ctx, err)
			return
		}
		ctx.Header("X-Archive-Location", location)
	}
	attachment(ctx, exp)
}

// ResetRecord DELETE /api/v1/sessions/:id/record
func (h *SessionHandler) ResetRecord(c context.Context, ctx *app.RequestContext) {
	s, err := h.session(ctx)
	if err != nil {
		h.fail(c, ctx, err)
		return
	}
	if err := s.Reset(c); err != nil {
		h.fail(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, utils.H{"session_id": s.ID(), "status": "reset"})
}

// Health GET /api/v1/health
func (h *SessionHandler) Health(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, utils.H{"status": "ok", "archive": h.manager.HasSink()})
}

func attachment(ctx *app.RequestContext, exp session.Export) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	ctx.Data(consts.StatusOK, exp.ContentType, exp.Data)
}
