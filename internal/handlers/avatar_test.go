package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sophia-wwww/accountd/internal/auth"
	"github.com/sophia-wwww/accountd/internal/services"
	"github.com/sophia-wwww/accountd/internal/storage"
)

type memObjectStorage struct {
	objects map[string][]byte
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: make(map[string][]byte)}
}

func (m *memObjectStorage) EnsureBucket(_ context.Context) error { return nil }

func (m *memObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStorage) Bucket() string { return "avatars" }

func newAvatarTestRouter(objects *memObjectStorage) *chi.Mux {
	service := services.NewAccountService(newMemUserRepo(), auth.NewPasswordHasher(4), nil, nil)

	router := chi.NewRouter()
	AccountRouter(router, service, nil)
	AvatarRouter(router, service, storage.NewStorage(objects), nil)
	return router
}

func uploadAvatar(t *testing.T, router http.Handler, username string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(formFieldAvatar, "avatar.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/profile/"+username+"/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAvatarUploadDownloadDelete(t *testing.T) {
	objects := newMemObjectStorage()
	router := newAvatarTestRouter(objects)

	if r := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d", r.Code)
	}

	content := []byte("png-bytes")
	if r := uploadAvatar(t, router, "alice", content); r.Code != http.StatusOK {
		t.Fatalf("upload: %d, body %s", r.Code, r.Body.String())
	}
	if got := objects.objects["avatars/alice"]; !bytes.Equal(got, content) {
		t.Fatalf("stored avatar mismatch: %q", got)
	}

	download := httptest.NewRecorder()
	router.ServeHTTP(download, httptest.NewRequest(http.MethodGet, "/profile/alice/avatar", nil))
	if download.Code != http.StatusOK {
		t.Fatalf("download: %d", download.Code)
	}
	if !bytes.Equal(download.Body.Bytes(), content) {
		t.Fatalf("downloaded avatar mismatch: %q", download.Body.Bytes())
	}

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/profile/alice/avatar", nil))
	if del.Code != http.StatusOK {
		t.Fatalf("delete: %d", del.Code)
	}
	if _, ok := objects.objects["avatars/alice"]; ok {
		t.Fatalf("avatar still stored after delete")
	}
}

func TestAvatarUnknownUser(t *testing.T) {
	router := newAvatarTestRouter(newMemObjectStorage())

	recorder := uploadAvatar(t, router, "nobody", []byte("x"))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestAvatarMissingObject(t *testing.T) {
	router := newAvatarTestRouter(newMemObjectStorage())

	if r := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d", r.Code)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/profile/alice/avatar", nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
