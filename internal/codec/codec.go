// Package codec 负责简历记录的序列化、反序列化以及导出文件命名。
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/types"
)

// Format 记录的序列化格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrMalformedRecord 输入无法反序列化为简历记录
var ErrMalformedRecord = errors.New("简历记录格式错误")

// ParseFormat 解析格式名，空串视为 JSON
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("不支持的记录格式: %q", s)
	}
}

// Ext 文件扩展名（含点）
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType 对应的 MIME 类型
func (f Format) ContentType() string {
	if f == FormatYAML {
		return constants.MIMEYAML
	}
	return constants.MIMEJSON
}

// Marshal 以两个空格缩进输出记录，字段顺序与结构体定义一致
func Marshal(rec *types.ResumeRecord, format Format) ([]byte, error) {
	rec = rec.Clone()

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("序列化YAML失败: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("序列化YAML失败: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("序列化JSON失败: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("不支持的记录格式: %q", format)
	}
}

// Unmarshal 反序列化记录并补齐空列表。
// 输入必须恰好是一个对象，空内容、null 和对象之后的多余内容都视为格式错误。
func Unmarshal(data []byte, format Format) (*types.ResumeRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: 内容为空", ErrMalformedRecord)
	}

	var rec *types.ResumeRecord
	var err error
	switch format {
	case FormatYAML:
		rec, err = unmarshalYAML(data)
	default:
		rec, err = unmarshalJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec.Normalize(), nil
}

func unmarshalJSON(data []byte) (*types.ResumeRecord, error) {
	if bytes.TrimSpace(data)[0] != '{' {
		return nil, errors.New("顶层必须是对象")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	rec := &types.ResumeRecord{}
	if err := dec.Decode(rec); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("对象之后存在多余内容")
	}
	return rec, nil
}

func unmarshalYAML(data []byte) (*types.ResumeRecord, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("内容为空")
		}
		return nil, err
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("顶层必须是映射")
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("存在多个YAML文档")
	}

	rec := &types.ResumeRecord{}
	if err := doc.Content[0].Decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DetectFormat 先看扩展名，再看内容首字符
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// IsRecordFile 文件名是否是序列化记录
func IsRecordFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func baseName(rec *types.ResumeRecord, suffix, fallback string) string {
	if rec == nil || strings.TrimSpace(rec.Contact.Name) == "" {
		return fallback
	}
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(rec.Contact.Name), "_")
	// 去掉路径分隔符，避免文件名逃逸出输出目录
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return name + suffix
}

// DocumentFilename 导出文档的文件名，例如 Jane_Doe_Resume.docx
func DocumentFilename(rec *types.ResumeRecord) string {
	return baseName(rec, constants.DocumentFileSuffix, constants.DocumentFallback) + constants.DocxExt
}

// RecordFilename 导出记录的文件名，例如 Jane_Doe_resume.json
func RecordFilename(rec *types.ResumeRecord, format Format) string {
	return baseName(rec, constants.RecordFileSuffix, constants.RecordFallback) + format.Ext()
}
