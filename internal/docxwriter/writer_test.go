package docxwriter

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-docx-go/internal/config"
	"resume-docx-go/internal/layout"
	"resume-docx-go/internal/parser"
	"resume-docx-go/internal/types"
)

func sampleRecord() *types.ResumeRecord {
	return &types.ResumeRecord{
		Contact: types.Contact{
			Name:     "Jane Doe",
			Phone:    "(555) 123-4567",
			Email:    "jane.doe@example.com",
			Location: "Springfield, IL",
		},
		Objective:    "Backend engineer who likes <tables> & \"quotes\".",
		Skills:       []string{"Go", "SQL", "Kafka"},
		Certificates: []string{"CKA", "AWS SAA"},
		Education: []types.EducationEntry{{
			Institution: "State University",
			Degree:      "B.Sc. Physics",
			Dates:       "2010 - 2014",
			Details:     []string{"Graduated with honors"},
		}},
		Experience: []types.ExperienceEntry{{
			Company:          "Acme Corp",
			Title:            "Senior Engineer",
			Dates:            "2019 - 2022",
			Responsibilities: []string{"Led backend team", "Shipped v2 API"},
		}},
	}
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("docx中缺少部件 %s", name)
	return ""
}

// TestEncodeRoundTrip 导出的文档再经表格解析应还原出同一份记录
func TestEncodeRoundTrip(t *testing.T) {
	rec := sampleRecord()

	data, err := Encode(layout.Render(rec), DefaultOptions())
	require.NoError(t, err)

	root, err := parser.DecodeDocx(data)
	require.NoError(t, err)
	assert.Len(t, root.FindAll("tbl"), 6)

	got := parser.ParseDocumentTree(root)
	assert.Equal(t, rec, got)
}

func TestEncodeParts(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Jane & Co"
	data, err := Encode(layout.Render(sampleRecord()), opts)
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	assert.Contains(t, doc, `<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"`)
	assert.Contains(t, doc, `<w:gridCol w:w="6552"/><w:gridCol w:w="2808"/>`, "教育表格 70/30")
	assert.Contains(t, doc, `<w:gridSpan w:val="3"/>`)
	assert.Contains(t, doc, `<w:numId w:val="1"/>`)
	assert.Contains(t, doc, "&lt;tables&gt; &amp;")
	assert.Contains(t, doc, `<w:sz w:val="32"/>`)
	assert.Contains(t, doc, `w:ascii="Calibri"`)

	styles := readPart(t, data, "word/styles.xml")
	assert.Contains(t, styles, `w:ascii="Times New Roman"`)
	assert.Contains(t, styles, `<w:sz w:val="22"/>`)
	assert.Contains(t, styles, `w:line="276"`)

	assert.Contains(t, readPart(t, data, "word/numbering.xml"), `w:val="bullet"`)
	assert.Contains(t, readPart(t, data, "docProps/core.xml"), "<dc:title>Jane &amp; Co</dc:title>")
	assert.Contains(t, readPart(t, data, "[Content_Types].xml"), "/word/document.xml")
}

func TestEncodeLargeRunsUseHeaderFont(t *testing.T) {
	opts := DefaultOptions()
	opts.HeaderFont = "Arial"
	data, err := Encode(layout.Render(sampleRecord()), opts)
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	largeRun := `<w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:b/><w:sz w:val="32"/></w:rPr>`
	assert.Contains(t, doc, largeRun+`<w:t xml:space="preserve">Jane Doe</w:t>`)
	assert.Contains(t, doc, largeRun+`<w:t xml:space="preserve">(555) 123-4567</w:t>`)
	// 普通加粗文本仍使用正文字体
	assert.NotContains(t, doc, `<w:rPr><w:b/><w:sz w:val="32"/>`)
}

func TestEncodeDeterministic(t *testing.T) {
	blocks := layout.Render(sampleRecord())
	a, err := Encode(blocks, DefaultOptions())
	require.NoError(t, err)
	b, err := Encode(blocks, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestEncodeEmptyRecord(t *testing.T) {
	data, err := Encode(layout.Render(types.NewResumeRecord()), DefaultOptions())
	require.NoError(t, err)

	root, err := parser.DecodeDocx(data)
	require.NoError(t, err)
	assert.Len(t, root.FindAll("tbl"), 1)
	assert.True(t, strings.HasPrefix(parser.DocumentText(root), "Your Name"))
}

func TestEncodeRejectsMalformedBlock(t *testing.T) {
	_, err := Encode([]layout.Block{{Kind: layout.BlockTable}}, DefaultOptions())
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	o := OptionsFromConfig(config.DocumentConfig{BodyFont: "Georgia", MarginTwips: 720})
	assert.Equal(t, "Georgia", o.BodyFont)
	assert.Equal(t, 720, o.MarginTwips)
	assert.Equal(t, "Calibri", o.HeaderFont)
	assert.Equal(t, 12240-1440, o.contentWidth())
}
