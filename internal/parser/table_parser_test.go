package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-docx-go/internal/types"
)

// 构造 WordprocessingML 片段的小工具
func wp(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, t := range texts {
		sb.WriteString(`<w:r><w:t xml:space="preserve">` + t + "</w:t></w:r>")
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

func wtc(paras ...string) string { return "<w:tc>" + strings.Join(paras, "") + "</w:tc>" }
func wtr(cells ...string) string { return "<w:tr>" + strings.Join(cells, "") + "</w:tr>" }
func wtbl(rows ...string) string { return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>" }

func wdoc(body ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(body, "") + "</w:body></w:document>"
}

func decodeDoc(t *testing.T, xml string) *Node {
	t.Helper()
	root, err := DecodeXMLBytes([]byte(xml))
	require.NoError(t, err)
	return root
}

func fullDocument() string {
	return wdoc(
		wtbl(
			wtr(wtc(wp("Jane Doe")), wtc(wp("(555) 123-4567"))),
			wtr(wtc(wp("Springfield, IL")), wtc(wp("jane@example.com"))),
		),
		wp("Objective"),
		wtbl(wtr(wtc(wp("Ship ", "things."), wp("")))),
		wp("Skills and Qualifications"),
		wtbl(
			wtr(wtc(wp("Go")), wtc(wp("SQL"), wp("Docker"))),
			wtr(wtc(wp("Kafka")), wtc(wp(""))),
		),
		wtbl(
			wtr(wtc(wp("CKA")), wtc(wp("  "))),
			wtr(wtc(wp("AWS "), wp("SAA")), wtc()),
		),
		wtbl(
			wtr(wtc(wp("State University"), wp("B.Sc. Physics")), wtc(wp("2010 - 2014"))),
			wtr(wtc(wp("Graduated with honors"))),
		),
		wtbl(
			wtr(wtc(wp("Acme Corp")), wtc(wp("Senior Engineer")), wtc(wp("2019 - 2022"))),
			wtr(wtc(wp("Led backend team"), wp(""), wp("Shipped v2 API"))),
		),
	)
}

func TestParseDocumentTreeFull(t *testing.T) {
	rec := ParseDocumentTree(decodeDoc(t, fullDocument()))

	assert.Equal(t, types.Contact{
		Name:     "Jane Doe",
		Phone:    "(555) 123-4567",
		Location: "Springfield, IL",
		Email:    "jane@example.com",
	}, rec.Contact)
	assert.Equal(t, "Ship things.", rec.Objective)
	assert.Equal(t, []string{"Go", "SQL", "Docker", "Kafka"}, rec.Skills)
	assert.Equal(t, []string{"CKA", "AWS SAA"}, rec.Certificates)

	require.Len(t, rec.Education, 1)
	assert.Equal(t, types.EducationEntry{
		Institution: "State University",
		Degree:      "B.Sc. Physics",
		Dates:       "2010 - 2014",
		Details:     []string{"Graduated with honors"},
	}, rec.Education[0])

	require.Len(t, rec.Experience, 1)
	assert.Equal(t, types.ExperienceEntry{
		Company:          "Acme Corp",
		Title:            "Senior Engineer",
		Dates:            "2019 - 2022",
		Responsibilities: []string{"Led backend team", "Shipped v2 API"},
	}, rec.Experience[0])
}

func TestParseTablesFewerTables(t *testing.T) {
	root := decodeDoc(t, wdoc(
		wtbl(wtr(wtc(wp("Only Name")))),
		wtbl(wtr(wtc(wp("An objective")))),
	))
	rec := ParseDocumentTree(root)

	assert.Equal(t, "Only Name", rec.Contact.Name)
	assert.Empty(t, rec.Contact.Phone)
	assert.Equal(t, "An objective", rec.Objective)
	assert.NotNil(t, rec.Skills)
	assert.Empty(t, rec.Skills)
	assert.NotNil(t, rec.Education)
	assert.NotNil(t, rec.Experience)

	empty := ParseTables(nil)
	assert.Equal(t, types.NewResumeRecord(), empty)
}

func TestParseEducationLookahead(t *testing.T) {
	table := decodeDoc(t, wdoc(wtbl(
		wtr(wtc(wp("School A"), wp("B.A. History")), wtc(wp("2001"))),
		wtr(wtc(wp("Name of educational institute"))),
		wtr(wtc(wp("School B")), wtc(wp("2005"))),
		wtr(wtc(wp("Honors"))),
		wtr(wtc(wp(""), wp("")), wtc(wp("1999"))),
	))).FindAll("tbl")[0]

	entries := parseEducationTable(table)
	require.Len(t, entries, 2)

	// 含表头标记的行不作为详情，且自身不足两个单元格，不开启条目
	assert.Equal(t, "School A", entries[0].Institution)
	assert.Equal(t, "B.A. History", entries[0].Degree)
	assert.Equal(t, "2001", entries[0].Dates)
	assert.Empty(t, entries[0].Details)

	assert.Equal(t, "School B", entries[1].Institution)
	assert.Empty(t, entries[1].Degree)
	assert.Equal(t, []string{"Honors"}, entries[1].Details)
}

func TestParseTablesIdentityDiscard(t *testing.T) {
	noIdentity := wdoc(
		wtbl(), wtbl(), wtbl(), wtbl(),
		wtbl(wtr(wtc(wp("")), wtc(wp("2010")))),
		wtbl(
			wtr(wtc(wp("")), wtc(wp("")), wtc(wp("2019"))),
			wtr(wtc(wp("orphan responsibility"))),
			wtr(wtc(wp("Solo Co")), wtc(wp("")), wtc(wp(""))),
		),
	)
	rec := ParseDocumentTree(decodeDoc(t, noIdentity))

	assert.Empty(t, rec.Education)
	require.Len(t, rec.Experience, 1)
	assert.Equal(t, "Solo Co", rec.Experience[0].Company)
	assert.Equal(t, []string{}, rec.Experience[0].Responsibilities)
}

func TestCellTextNamespaceAgnostic(t *testing.T) {
	root := decodeDoc(t, `<root xmlns:x="urn:other"><x:tc><x:p><x:t> a</x:t><t>b </t></x:p><p><t>c</t></p></x:tc></root>`)
	cells := root.FindAll("tc")
	require.Len(t, cells, 1)

	assert.Equal(t, "ab c", CellText(cells[0]))
	assert.Equal(t, []string{"ab", "c"}, CellParagraphs(cells[0]))
}

func zipDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeDocx(t *testing.T) {
	data := zipDocx(t, map[string]string{"word/document.xml": fullDocument()})

	root, err := DecodeDocx(data)
	require.NoError(t, err)
	assert.Len(t, root.FindAll("tbl"), 6)

	text, err := DocxTextExtractor{}.ExtractText(context.Background(), data, "cv.docx")
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Jane Doe", lines[0])
	assert.Contains(t, lines, "Skills and Qualifications")
}

func TestDecodeDocxInvalid(t *testing.T) {
	_, err := DecodeDocx([]byte("definitely not a zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))

	_, err = DecodeDocx(zipDocx(t, map[string]string{"word/other.xml": "<x/>"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestExtractorRegistry(t *testing.T) {
	reg := NewExtractorRegistry()
	ctx := context.Background()

	text, err := reg.ExtractText(ctx, []byte("\xEF\xBB\xBFhello\nworld"), "CV.TXT")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)

	_, err = reg.ExtractText(ctx, []byte{0xff, 0xfe, 0xfd}, "cv.txt")
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = reg.ExtractText(ctx, []byte("%PDF-1.4"), "cv.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	reg.Register("pdf", PlainTextExtractor{})
	_, ok := reg.Lookup("x.PDF")
	assert.True(t, ok)
}
