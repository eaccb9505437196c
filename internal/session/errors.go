package session

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrMalformedInput 上传的记录无法反序列化，或文档不是有效的容器
	ErrMalformedInput = errors.New("输入格式错误")
	// ErrDependencyMissing 需要的解析/渲染/归档组件未配置
	ErrDependencyMissing = errors.New("依赖组件不可用")
	// ErrNoRecord 当前会话尚未加载任何简历
	ErrNoRecord = errors.New("尚未加载简历数据")
	// ErrSessionNotFound 会话ID无效
	ErrSessionNotFound = errors.New("会话不存在")
	// ErrStoreFailed 会话存储读写失败
	ErrStoreFailed = errors.New("会话存储操作失败")
)

// OpError 包含详细错误信息的自定义错误
type OpError struct {
	SessionID string
	Op        string
	BaseErr   error
	Detail    string
}

func (e *OpError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 会话:%s): %s", e.BaseErr, e.Op, e.SessionID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 会话:%s)", e.BaseErr, e.Op, e.SessionID)
}

func (e *OpError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *OpError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func newMalformedError(id, op string, cause error) error {
	return &OpError{SessionID: id, Op: op, BaseErr: ErrMalformedInput, Detail: causeText(cause)}
}

func newDependencyError(id, op, detail string) error {
	return &OpError{SessionID: id, Op: op, BaseErr: ErrDependencyMissing, Detail: detail}
}

func newNoRecordError(id, op string) error {
	return &OpError{SessionID: id, Op: op, BaseErr: ErrNoRecord}
}

func newStoreError(id, op string, cause error) error {
	return &OpError{SessionID: id, Op: op, BaseErr: ErrStoreFailed, Detail: causeText(cause)}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// UserMessage 把错误转换为面向用户的提示
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var opErr *OpError
	detail := ""
	if errors.As(err, &opErr) {
		detail = opErr.Detail
	}

	switch {
	case errors.Is(err, ErrNoRecord):
		return "No resume data loaded"
	case errors.Is(err, ErrMalformedInput):
		if detail != "" {
			return "Error processing file: " + detail
		}
		return "Error processing file"
	case errors.Is(err, ErrDependencyMissing):
		return "A required component is not available. Please reload and try again."
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found"
	default:
		return "Unexpected error, please try again"
	}
}
