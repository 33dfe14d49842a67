package shares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, f *fixture, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc, "", maxBytes).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, r *gin.Engine, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "file", name, content)
	req := httptest.NewRequest(http.MethodPost, "http://10.0.0.5:3000/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHelloWorldShareFlow(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)

	resp := doUpload(t, r, "hello.txt", []byte("hello world"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var created UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id")
	}
	if created.ShareURL != "http://10.0.0.5:3000/share/"+created.ID {
		t.Fatalf("unexpected share url %q", created.ShareURL)
	}
	if !created.ExpiresAt.Equal(f.now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiresAt %s", created.ExpiresAt)
	}

	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/share/"+created.ID, nil))
	if get.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", get.Code)
	}
	if get.Body.String() != "hello world" {
		t.Fatalf("unexpected body %q", get.Body.String())
	}
	if cd := get.Header().Get("Content-Disposition"); cd != `attachment; filename="hello.txt"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if ct := get.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestShareUnknownIDReturns404(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/share/2b7e1516-28ae-4d2a-a6ab-f7158809cf4f", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" || body["code"] != ErrorCodeNotFound {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestShareExpiredReturns410(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)
	meta := f.upload(t, "a.txt", "x")
	f.now = meta.ExpiresAt.Add(time.Minute)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/share/"+meta.ID, nil))
	if resp.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Link expired") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	inspect := httptest.NewRecorder()
	r.ServeHTTP(inspect, httptest.NewRequest(http.MethodGet, "/api/share/"+meta.ID, nil))
	if inspect.Code != http.StatusGone {
		t.Fatalf("expected 410 from inspect, got %d", inspect.Code)
	}
}

func TestUploadWithoutFileReturns400(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)

	body, contentType := multipartBody(t, "other", "a.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUploadTooLargeReturns413(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 1024)

	resp := doUpload(t, r, "big.bin", bytes.Repeat([]byte("a"), 4096))
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDispositionHeaderIsSanitized(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)
	meta := f.upload(t, "we\"ird\r\nname.txt", "x")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/share/"+meta.ID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if cd := resp.Header().Get("Content-Disposition"); cd != `attachment; filename="we_ird__name.txt"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
}

func TestDispositionNonASCII(t *testing.T) {
	got := contentDisposition("résumé.pdf")
	if !strings.Contains(got, `filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`) {
		t.Fatalf("expected RFC 5987 parameter, got %q", got)
	}
}

func TestDispositionEncodesNonAttrChars(t *testing.T) {
	got := contentDisposition("résumé:v1=final@home (2);x.pdf")
	const prefix = "filename*=UTF-8''"
	i := strings.Index(got, prefix)
	if i < 0 {
		t.Fatalf("missing extended parameter in %q", got)
	}
	ext := got[i+len(prefix):]
	if ext != "r%C3%A9sum%C3%A9%3Av1%3Dfinal%40home%20%282%29%3Bx.pdf" {
		t.Fatalf("unexpected ext-value %q", ext)
	}
	for _, ch := range ext {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$&+-.^_`|~%", ch) {
			t.Fatalf("ext-value %q contains %q outside attr-char", ext, ch)
		}
	}
}

func TestInspectReturnsMetadata(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f, 0)
	meta := f.upload(t, "a.txt", "abc")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/share/"+meta.ID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got MetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != meta.ID || got.SizeBytes != 3 || got.Checksum != meta.Checksum {
		t.Fatalf("unexpected metadata %+v", got)
	}
}

type pathLeakingRepo struct {
	MetadataRepo
}

func (pathLeakingRepo) Write(ctx context.Context, meta Metadata) error {
	return errors.New("open /srv/lanshare/ledger/artifact/" + meta.ID + ".json: permission denied")
}

func TestStorageFailureHidesCause(t *testing.T) {
	f := newFixture(t)
	f.svc.Repo = pathLeakingRepo{MetadataRepo: NewLedgerRepo(f.ledger)}
	r := newTestRouter(t, f, 0)

	resp := doUpload(t, r, "a.txt", []byte("x"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "/srv/lanshare") {
		t.Fatalf("response leaks storage path: %s", resp.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != ErrorCodeStorage || body["error"] != "Failed to store file" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["details"]; ok {
		t.Fatalf("expected no details, got %v", body["details"])
	}
}
