package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-docx-go/internal/api/handler"
	"resume-docx-go/internal/api/router"
	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/session"
	"resume-docx-go/internal/storage"
)

const janeDoe = `Jane Doe
jane.doe@example.com
(555) 123-4567
Springfield, IL
Experience
Acme Corp
Senior Engineer
2019 - 2022
• Led backend team
• Shipped v2 API`

type testServer struct {
	h      *server.Hertz
	apiKey string
}

func newTestServer(t *testing.T, apiKey string, sink session.ExportSink) *testServer {
	t.Helper()
	manager := session.NewManager(session.NewConverter(), storage.NewMemoryStore(time.Hour), sink)
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, handler.NewSessionHandler(manager, 1), apiKey)
	return &testServer{h: h, apiKey: apiKey}
}

func (s *testServer) do(method, url string, body *ut.Body, headers ...ut.Header) *ut.ResponseRecorder {
	if s.apiKey != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + s.apiKey})
	}
	return ut.PerformRequest(s.h.Engine, method, url, body, headers...)
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	resp := s.do(http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.Code)
	var out handler.CreateSessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.NotEmpty(t, out.SessionID)
	return out.SessionID
}

func multipartFile(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (s *testServer) importFile(t *testing.T, id, filename string, content []byte, fields map[string]string) *ut.ResponseRecorder {
	t.Helper()
	body, contentType := multipartFile(t, filename, content, fields)
	return s.do(http.MethodPost, "/api/v1/sessions/"+id+"/import",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
}

func decodeError(t *testing.T, resp *ut.ResponseRecorder) string {
	t.Helper()
	var out handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "secret", nil)
	// 健康检查不需要认证
	resp := ut.PerformRequest(s.h.Engine, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestImportExportFlow(t *testing.T) {
	s := newTestServer(t, "", nil)
	id := s.createSession(t)

	resp := s.importFile(t, id, "jane.txt", []byte(janeDoe), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var imported handler.ImportResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &imported))
	assert.Equal(t, id, imported.SessionID)
	assert.Equal(t, "Jane Doe", imported.Summary.Name)
	assert.Equal(t, 1, imported.Summary.ExperienceCount)

	resp = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/record?format=yaml", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, constants.MIMEYAML, string(resp.Header().ContentType()))
	assert.Contains(t, string(resp.Header().Peek("Content-Disposition")), "Jane_Doe_resume.yaml")
	assert.Contains(t, resp.Body.String(), "company: Acme Corp")

	resp = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/export/docx", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, constants.MIMEDocx, string(resp.Header().ContentType()))
	assert.Contains(t, string(resp.Header().Peek("Content-Disposition")), "Jane_Doe_Resume.docx")
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")))

	resp = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/preview?mode=markdown", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Body.String(), "# Jane Doe"))
	assert.Equal(t, "false", string(resp.Header().Peek("X-Preview-Native")))

	resp = s.do(http.MethodDelete, "/api/v1/sessions/"+id+"/record", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/export/docx", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "No resume data loaded", decodeError(t, resp))
}

func TestImportErrors(t *testing.T) {
	s := newTestServer(t, "", nil)
	id := s.createSession(t)

	resp := s.importFile(t, id, "broken.json", []byte(`{"contact":`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.True(t, strings.HasPrefix(decodeError(t, resp), "Error processing file"))

	resp = s.importFile(t, id, "cv.pdf", []byte("%PDF-1.7"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = s.importFile(t, id, "cv.txt", []byte(janeDoe), map[string]string{"kind": "spreadsheet"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	big := bytes.Repeat([]byte("a"), 2<<20)
	resp = s.importFile(t, id, "big.txt", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	resp = s.importFile(t, "not-a-session", "cv.txt", []byte(janeDoe), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Session not found", decodeError(t, resp))
}

func TestArchiveExport(t *testing.T) {
	dir := t.TempDir()
	sink, err := storage.NewFileSink(dir)
	require.NoError(t, err)
	s := newTestServer(t, "", sink)
	id := s.createSession(t)

	resp := s.importFile(t, id, "jane.txt", []byte(janeDoe), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/export/docx?archive=true", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, filepath.Join(dir, id, "Jane_Doe_Resume.docx"), string(resp.Header().Peek("X-Archive-Location")))

	noSink := newTestServer(t, "", nil)
	id = noSink.createSession(t)
	resp = noSink.importFile(t, id, "jane.txt", []byte(janeDoe), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = noSink.do(http.MethodGet, "/api/v1/sessions/"+id+"/export/docx?archive=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, "secret", nil)

	resp := ut.PerformRequest(s.h.Engine, http.MethodPost, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ut.PerformRequest(s.h.Engine, http.MethodPost, "/api/v1/sessions", nil,
		ut.Header{Key: "Authorization", Value: "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = s.do(http.MethodPost, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusCreated, resp.Code)
}
