package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-docx-go/internal/config"
	"resume-docx-go/internal/storage"
	"resume-docx-go/internal/types"
)

func sampleRecord() *types.ResumeRecord {
	rec := types.NewResumeRecord()
	rec.Contact = types.Contact{Name: "Jane Doe", Email: "jane@example.com"}
	rec.Skills = []string{"Go", "SQL"}
	rec.Experience = []types.ExperienceEntry{{
		Company: "Acme", Title: "Engineer", Dates: "2019 - 2022", Responsibilities: []string{"Led team"},
	}}
	return rec
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore(0)

	_, ok, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := sampleRecord()
	require.NoError(t, s.Save(ctx, "s1", rec))

	// 修改原对象不影响已保存的记录
	rec.Skills[0] = "Rust"
	got, ok, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Go", got.Skills[0])

	// 修改返回值同样不影响存储
	got.Contact.Name = "Someone"
	again, _, _ := s.Load(ctx, "s1")
	assert.Equal(t, "Jane Doe", again.Contact.Name)

	require.NoError(t, s.Delete(ctx, "s1"))
	_, ok, err = s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore(50 * time.Millisecond)
	require.NoError(t, s.Save(ctx, "s1", sampleRecord()))

	_, ok, _ := s.Load(ctx, "s1")
	assert.True(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Save(ctx, "shared", sampleRecord())
				_, _, _ = s.Load(ctx, "shared")
			}
		}()
	}
	wg.Wait()
	_, ok, err := s.Load(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
}

func newMiniRedisStore(t *testing.T, ttl time.Duration) (*storage.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return storage.NewRedisWithClient(client, &config.RedisConfig{Address: mr.Addr()}, ttl), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	r, mr := newMiniRedisStore(t, time.Hour)
	require.NoError(t, r.Ping(ctx))

	_, ok, err := r.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := sampleRecord()
	require.NoError(t, r.Save(ctx, "s1", rec))

	key := "app:session:record:s1"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
	raw, err := mr.Get(key)
	require.NoError(t, err)
	assert.Contains(t, raw, `"name": "Jane Doe"`)

	got, ok, err := r.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	mr.FastForward(2 * time.Hour)
	_, ok, err = r.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreDeleteAndCorrupt(t *testing.T) {
	ctx := context.Background()
	r, mr := newMiniRedisStore(t, 0)

	require.NoError(t, r.Save(ctx, "s1", sampleRecord()))
	require.NoError(t, r.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("app:session:record:s1"))

	require.NoError(t, mr.Set("app:session:record:s2", "{not json"))
	_, _, err := r.Load(ctx, "s2")
	assert.Error(t, err)

	mr.SetError("LOADING")
	_, _, err = r.Load(ctx, "s1")
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sink, err := storage.NewFileSink(filepath.Join(dir, "exports"))
	require.NoError(t, err)

	loc, err := sink.Put(ctx, "sess-1/Jane_Doe_Resume.docx", "application/zip", []byte("docx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "sess-1", "Jane_Doe_Resume.docx"), loc)
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(data))

	// 覆盖写入
	_, err = sink.Put(ctx, "sess-1/Jane_Doe_Resume.docx", "", []byte("v2"))
	require.NoError(t, err)
	data, _ = os.ReadFile(loc)
	assert.Equal(t, "v2", string(data))

	for _, bad := range []string{"", "../escape.docx", "/etc/passwd", "a/../../b"} {
		_, err := sink.Put(ctx, bad, "", []byte("x"))
		assert.Error(t, err, bad)
	}
}

// fakeS3 模拟 MinIO 的最小 S3 接口：HEAD/PUT bucket 和 PUT object
type fakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]bool
	objects  map[string][]byte
	ctypes   map[string]string
	requests []string
}

func newFakeS3(buckets ...string) *fakeS3 {
	f := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}, ctypes: map[string]string{}}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	object := ""
	if len(parts) == 2 {
		object = parts[1]
	}

	switch {
	case object == "" && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case object == "" && r.Method == http.MethodPut:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case object != "" && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[bucket+"/"+object] = body
		f.ctypes[bucket+"/"+object] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func minioConfig(endpoint string) *config.MinIOConfig {
	return &config.MinIOConfig{
		Endpoint:        endpoint,
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "resume-exports",
		Location:        "us-east-1",
		PresignExpiry:   "10m",
	}
}

func TestMinIOPut(t *testing.T) {
	fake := newFakeS3("resume-exports")
	server := httptest.NewServer(fake)
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	m, err := storage.NewMinIO(context.Background(), minioConfig(u.Host))
	require.NoError(t, err)

	loc, err := m.Put(context.Background(), "sess-1/Jane_Doe_Resume.docx", "application/test", []byte("payload"))
	require.NoError(t, err)

	// 非 TLS 连接下请求体可能是 aws-chunked 编码
	assert.Contains(t, string(fake.objects["resume-exports/exports/sess-1/Jane_Doe_Resume.docx"]), "payload")
	assert.Equal(t, "application/test", fake.ctypes["resume-exports/exports/sess-1/Jane_Doe_Resume.docx"])

	presigned, err := url.Parse(loc)
	require.NoError(t, err)
	assert.Equal(t, "/resume-exports/exports/sess-1/Jane_Doe_Resume.docx", presigned.Path)
	assert.Equal(t, "600", presigned.Query().Get("X-Amz-Expires"))
	assert.Contains(t, presigned.Query().Get("response-content-disposition"), "Jane_Doe_Resume.docx")
}

func TestMinIOCreatesBucket(t *testing.T) {
	fake := newFakeS3()
	server := httptest.NewServer(fake)
	defer server.Close()
	u, _ := url.Parse(server.URL)

	_, err := storage.NewMinIO(context.Background(), minioConfig(u.Host))
	require.NoError(t, err)
	assert.True(t, fake.buckets["resume-exports"])
}

func TestNewStorage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Sink = "file"
	cfg.Export.Dir = t.TempDir()

	s, err := storage.NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &storage.MemoryStore{}, s.Store)
	require.NotNil(t, s.Files)
	assert.Equal(t, cfg.Export.Dir, s.Files.Dir())
	assert.NotNil(t, s.Sink)

	mr := miniredis.RunT(t)
	cfg = config.DefaultConfig()
	cfg.Session.Backend = "redis"
	cfg.Redis.Address = mr.Addr()
	s, err = storage.NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.NotNil(t, s.Redis)
	assert.Nil(t, s.Sink)

	cfg.Redis.Address = "127.0.0.1:1"
	_, err = storage.NewStorage(context.Background(), cfg)
	assert.Error(t, err)
}
