package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-docx-go/internal/types"
)

func fixtures() map[string]*types.ResumeRecord {
	full := &types.ResumeRecord{
		Contact: types.Contact{
			Name: "Jane  Doe", Phone: "(555) 123-4567", Email: "jane@example.com",
			Location: "Springfield, IL", LinkedIn: "linkedin.com/in/jane", GitHub: "github.com/jane",
		},
		Objective:    "yes: no # not a comment",
		Skills:       []string{"Go", "Go", "true"},
		Certificates: []string{"CKA"},
		Education: []types.EducationEntry{
			{Institution: "State U", Degree: "", Dates: "2010 - 2014", Location: "", Details: []string{}},
			{Institution: "", Degree: "PhD", Details: []string{"a", "b"}},
		},
		Experience: []types.ExperienceEntry{
			{Company: "Acme", Title: "", Dates: "", Responsibilities: []string{}},
			{Company: "Initech", Title: "Analyst", Dates: "2001–2003", Responsibilities: []string{"TPS"}},
		},
	}
	onlyName := types.NewResumeRecord()
	onlyName.Contact.Name = "Solo"

	return map[string]*types.ResumeRecord{
		"full":      full,
		"empty":     types.NewResumeRecord(),
		"only_name": onlyName,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, rec := range fixtures() {
		for _, format := range []Format{FormatJSON, FormatYAML} {
			t.Run(name+"_"+string(format), func(t *testing.T) {
				data, err := Marshal(rec, format)
				require.NoError(t, err)

				got, err := Unmarshal(data, format)
				require.NoError(t, err)
				assert.Equal(t, rec, got)
			})
		}
	}
}

func TestMarshalJSONShape(t *testing.T) {
	data, err := Marshal(types.NewResumeRecord(), FormatJSON)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n  \"contact\": {},\n  \"objective\": \"\",\n  \"skills\": []"), s)
	assert.Less(t, strings.Index(s, `"education"`), strings.Index(s, `"experience"`))

	// nil 列表输出为 []
	data, err = Marshal(&types.ResumeRecord{}, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"certificates": []`)
	assert.NotContains(t, string(data), "null")
}

func TestMarshalDoesNotMutate(t *testing.T) {
	rec := &types.ResumeRecord{Education: []types.EducationEntry{{Institution: "X"}}}
	_, err := Marshal(rec, FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, rec.Skills)
	assert.Nil(t, rec.Education[0].Details)
}

func TestUnmarshalMalformed(t *testing.T) {
	_, err := Unmarshal([]byte(`{"skills": "not a list"}`), FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))

	_, err = Unmarshal([]byte("skills: [unclosed"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	malformed := []struct {
		name   string
		data   string
		format Format
	}{
		{"JSON后有多余内容", `{"contact":{"name":"A"}} trailing garbage`, FormatJSON},
		{"两个JSON对象", `{"contact":{"name":"A"}}{"contact":{"name":"B"}}`, FormatJSON},
		{"JSON null", "null", FormatJSON},
		{"JSON数组", "[]", FormatJSON},
		{"空JSON", "", FormatJSON},
		{"空白YAML", "  \n\t\n", FormatYAML},
		{"空YAML", "", FormatYAML},
		{"YAML null", "null", FormatYAML},
		{"YAML标量", "just some text", FormatYAML},
		{"多个YAML文档", "contact:\n  name: A\n---\ncontact:\n  name: B\n", FormatYAML},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Unmarshal([]byte(tc.data), tc.format)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.Nil(t, rec)
		})
	}

	rec, err := Unmarshal([]byte("contact:\n  name: A\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Contact.Name)

	rec, err = Unmarshal([]byte(`{"contact":{"name":"A"},"education":[{"institution":"B"}]}`+"\n"), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{}, rec.Skills)
	assert.Equal(t, []string{}, rec.Education[0].Details)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("x.JSON", nil))
	assert.Equal(t, FormatYAML, DetectFormat("x.yml", []byte("{}")))
	assert.Equal(t, FormatJSON, DetectFormat("upload", []byte("  \n{\"a\":1}")))
	assert.Equal(t, FormatYAML, DetectFormat("upload", []byte("contact:\n  name: A")))

	assert.True(t, IsRecordFile("a.yaml"))
	assert.False(t, IsRecordFile("a.docx"))

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFilenames(t *testing.T) {
	rec := types.NewResumeRecord()
	assert.Equal(t, "Resume.docx", DocumentFilename(rec))
	assert.Equal(t, "resume.json", RecordFilename(rec, FormatJSON))
	assert.Equal(t, "Resume.docx", DocumentFilename(nil))

	rec.Contact.Name = "  Jane \t Q  Doe "
	assert.Equal(t, "Jane_Q_Doe_Resume.docx", DocumentFilename(rec))
	assert.Equal(t, "Jane_Q_Doe_resume.yaml", RecordFilename(rec, FormatYAML))

	rec.Contact.Name = "../etc/passwd"
	assert.NotContains(t, DocumentFilename(rec), "/")
}
