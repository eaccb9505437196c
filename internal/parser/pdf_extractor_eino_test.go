package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	assert.Equal(t, 30*time.Second, extractor.timeout)

	custom := zerolog.Nop()
	extractor, err = NewEinoPDFTextExtractor(ctx, WithEinoLogger(custom), WithEinoTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, extractor.timeout)
}

func TestEinoPDFRejectsNonPDF(t *testing.T) {
	extractor, err := NewEinoPDFTextExtractor(context.Background())
	require.NoError(t, err)

	_, err = extractor.ExtractText(context.Background(), []byte("plain text"), "cv.pdf")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

// TestEinoPDFSample 本地存在样例 PDF 时做一次真实提取
func TestEinoPDFSample(t *testing.T) {
	candidates := []string{
		"testdata/sample_resume.pdf",
		"../../testdata/sample_resume.pdf",
	}
	var data []byte
	for _, p := range candidates {
		if b, err := os.ReadFile(filepath.Clean(p)); err == nil {
			data = b
			break
		}
	}
	if data == nil {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	extractor, err := NewEinoPDFTextExtractor(context.Background())
	require.NoError(t, err)

	text, err := extractor.ExtractText(context.Background(), data, "sample_resume.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	rec := ParseText(text)
	assert.NotEmpty(t, rec.Contact.Name)
}
