package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sophia-wwww/accountd/internal/auth"
	"github.com/sophia-wwww/accountd/internal/services"
	"github.com/sophia-wwww/accountd/internal/store"
	"github.com/sophia-wwww/accountd/types"
)

type memUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]types.User), nextID: 1}
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, ok := m.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return types.User{}, store.ErrDuplicateUsername
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return user, nil
}

func (m *memUserRepo) UpdateProfile(_ context.Context, username string, update types.ProfileUpdate) error {
	user, ok := m.users[username]
	if !ok {
		return store.ErrNotFound
	}
	if update.Height.Set {
		user.Height = nil
		if update.Height.Valid {
			v := update.Height.Value
			user.Height = &v
		}
	}
	if update.Weight.Set {
		user.Weight = nil
		if update.Weight.Valid {
			v := update.Weight.Value
			user.Weight = &v
		}
	}
	if update.Age.Set {
		user.Age = nil
		if update.Age.Valid {
			v := update.Age.Value
			user.Age = &v
		}
	}
	if update.Gender.Set {
		user.Gender = nil
		if update.Gender.Valid {
			v := update.Gender.Value
			user.Gender = &v
		}
	}
	m.users[username] = user
	return nil
}

func newTestRouter() *chi.Mux {
	service := services.NewAccountService(newMemUserRepo(), auth.NewPasswordHasher(4), nil, nil)

	router := chi.NewRouter()
	router.Get("/health", Health)
	AccountRouter(router, service, nil)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodGet, "/health", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if body := decodeEnvelope(t, recorder); body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRegisterSuccess(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/register",
		`{"username":"alice","password":"pw123","height":165.0}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d, body %s", recorder.Code, recorder.Body.String())
	}
	body := decodeEnvelope(t, recorder)
	if body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}
	if strings.Contains(recorder.Body.String(), "pw123") {
		t.Fatalf("response leaks password material: %s", recorder.Body.String())
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing password", `{"username":"alice"}`, http.StatusBadRequest},
		{"missing username", `{"password":"pw123"}`, http.StatusBadRequest},
		{"non-string username", `{"username":7,"password":"pw123"}`, http.StatusBadRequest},
		{"invalid age type", `{"username":"alice","password":"pw123","age":"thirty"}`, http.StatusBadRequest},
		{"malformed json", `{"username":`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter()
			recorder := doJSON(t, router, http.MethodPost, "/register", tc.body)
			if recorder.Code != tc.wantStatus {
				t.Fatalf("unexpected status: %d, body %s", recorder.Code, recorder.Body.String())
			}
			if body := decodeEnvelope(t, recorder); body["status"] != "failed" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	router := newTestRouter()

	first := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register: %d", first.Code)
	}

	second := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"other"}`)
	if second.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d, body %s", second.Code, second.Body.String())
	}
	body := decodeEnvelope(t, second)
	if body["status"] != "failed" || body["message"] != "username already exists" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAuthenticateUniformErrorShape(t *testing.T) {
	router := newTestRouter()

	if r := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d", r.Code)
	}

	wrongPassword := doJSON(t, router, http.MethodPost, "/authenticate", `{"username":"alice","password":"nope"}`)
	unknownUser := doJSON(t, router, http.MethodPost, "/authenticate", `{"username":"nobody","password":"pw123"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected statuses: %d, %d", wrongPassword.Code, unknownUser.Code)
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("error shapes differ: %s vs %s", wrongPassword.Body.String(), unknownUser.Body.String())
	}
}

func TestAuthenticateMissingFields(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/authenticate", `{"username":"alice"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodGet, "/profile/nobody", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	body := decodeEnvelope(t, recorder)
	if body["status"] != "failed" || body["message"] != "user not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUpdateProfileNoOp(t *testing.T) {
	router := newTestRouter()

	if r := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d", r.Code)
	}

	for _, body := range []string{`{}`, `{"hobby":"climbing"}`} {
		recorder := doJSON(t, router, http.MethodPut, "/profile/alice", body)
		if recorder.Code != http.StatusOK {
			t.Fatalf("unexpected status for %s: %d", body, recorder.Code)
		}
		envelope := decodeEnvelope(t, recorder)
		if envelope["status"] != "success" || envelope["message"] != "no changes" {
			t.Fatalf("unexpected body: %v", envelope)
		}
	}
}

func TestUpdateProfileInvalidType(t *testing.T) {
	router := newTestRouter()

	if r := doJSON(t, router, http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d", r.Code)
	}

	recorder := doJSON(t, router, http.MethodPut, "/profile/alice", `{"age":"not-a-number"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d, body %s", recorder.Code, recorder.Body.String())
	}
	body := decodeEnvelope(t, recorder)
	if body["message"] != "invalid field type: age" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPut, "/profile/nobody", `{"age":30}`)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

// TestAccountLifecycle walks the register → authenticate → update → read
// flow end to end over the router.
func TestAccountLifecycle(t *testing.T) {
	router := newTestRouter()

	if r := doJSON(t, router, http.MethodPost, "/register",
		`{"username":"alice","password":"pw123","height":165.0}`); r.Code != http.StatusCreated {
		t.Fatalf("register: %d, body %s", r.Code, r.Body.String())
	}

	authRecorder := doJSON(t, router, http.MethodPost, "/authenticate", `{"username":"alice","password":"pw123"}`)
	if authRecorder.Code != http.StatusOK {
		t.Fatalf("authenticate: %d, body %s", authRecorder.Code, authRecorder.Body.String())
	}
	var authBody struct {
		Status  string        `json:"status"`
		UserID  int           `json:"user_id"`
		Profile types.Profile `json:"profile"`
	}
	if err := json.Unmarshal(authRecorder.Body.Bytes(), &authBody); err != nil {
		t.Fatalf("decode authenticate response: %v", err)
	}
	if authBody.Status != "success" || authBody.UserID == 0 {
		t.Fatalf("unexpected authenticate body: %+v", authBody)
	}
	if authBody.Profile.Height == nil || *authBody.Profile.Height != 165.0 {
		t.Fatalf("unexpected profile height: %+v", authBody.Profile)
	}
	if authBody.Profile.Weight != nil || authBody.Profile.Age != nil || authBody.Profile.Gender != nil {
		t.Fatalf("expected null optional fields: %+v", authBody.Profile)
	}

	if r := doJSON(t, router, http.MethodPut, "/profile/alice", `{"age":30}`); r.Code != http.StatusOK {
		t.Fatalf("update profile: %d, body %s", r.Code, r.Body.String())
	}

	getRecorder := doJSON(t, router, http.MethodGet, "/profile/alice", "")
	if getRecorder.Code != http.StatusOK {
		t.Fatalf("get profile: %d", getRecorder.Code)
	}
	var getBody struct {
		Status  string        `json:"status"`
		Profile types.Profile `json:"profile"`
	}
	if err := json.Unmarshal(getRecorder.Body.Bytes(), &getBody); err != nil {
		t.Fatalf("decode profile response: %v", err)
	}
	if getBody.Profile.Height == nil || *getBody.Profile.Height != 165.0 {
		t.Fatalf("height lost by partial update: %+v", getBody.Profile)
	}
	if getBody.Profile.Age == nil || *getBody.Profile.Age != 30 {
		t.Fatalf("age not applied: %+v", getBody.Profile)
	}
	if getBody.Profile.Weight != nil || getBody.Profile.Gender != nil {
		t.Fatalf("untouched fields must stay null: %+v", getBody.Profile)
	}
}
