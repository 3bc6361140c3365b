package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/auth"
	"marketplace/internal/domain/user"
	"marketplace/internal/media"
	"marketplace/internal/storage/memory"
	"marketplace/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true
	os.Exit(m.Run())
}

type sentMail struct{ to, subject, body string }

type captureMailer struct {
	sent []sentMail
	err  error
}

func (m *captureMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type env struct {
	router     *gin.Engine
	store      *store.Store
	mailer     *captureMailer
	activation *auth.JWTManager
	sessions   *auth.JWTManager
	clock      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: memory.New(), mailer: &captureMailer{}, clock: time.Now()}

	disk, err := media.NewDisk(t.TempDir(), "http://localhost:8000")
	require.NoError(t, err)

	e.sessions = auth.NewJWTManager(auth.JWTConfig{Secret: "session", TTL: 24 * time.Hour})
	e.activation = auth.NewJWTManager(auth.JWTConfig{
		Secret: "activation", TTL: time.Hour,
		Now: func() time.Time { return e.clock },
	})

	e.router = gin.New()
	NewHandler(Dependencies{
		Users:             e.store.Users,
		Uploader:          disk,
		Mailer:            e.mailer,
		Sessions:          auth.Sessions{JWT: e.sessions},
		Activation:        e.activation,
		ActivationBaseURL: "http://localhost:3000",
	}).Routes(e.router.Group("/api/v2/user"), auth.NewGate(e.sessions, e.store.Users, e.store.Shops))
	return e
}

func (e *env) json(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) signup(t *testing.T, name, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", name))
	require.NoError(t, w.WriteField("email", email))
	require.NoError(t, w.WriteField("password", password))
	fw, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/user/create-user", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// seedUser persists an activated user directly and returns a session token.
func (e *env) seedUser(t *testing.T, email, password string) (user.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &user.User{Name: "Ada", Email: email, PasswordHash: hash, Role: user.RoleUser}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	tok, _, err := e.sessions.Sign(u.ID, auth.RoleUser)
	require.NoError(t, err)
	return *u, tok
}

func tokenFromMail(t *testing.T, m sentMail) string {
	t.Helper()
	i := strings.Index(m.body, "/activation/")
	require.GreaterOrEqual(t, i, 0, m.body)
	return strings.TrimSpace(m.body[i+len("/activation/"):])
}

func TestSignupAndActivate(t *testing.T) {
	e := newEnv(t)

	rec := e.signup(t, "Ada", "Ada@Example.com", "secret1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, e.mailer.sent, 1)
	assert.Equal(t, "ada@example.com", e.mailer.sent[0].to)

	// nothing is persisted before activation
	_, err := e.store.Users.ByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	e.clock = e.clock.Add(59 * time.Minute)
	act := e.json(t, http.MethodPost, "/api/v2/user/activation", "", map[string]string{
		"activation_token": tokenFromMail(t, e.mailer.sent[0]),
	})
	require.Equal(t, http.StatusCreated, act.Code, act.Body.String())

	var body struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
	require.NoError(t, json.Unmarshal(act.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "Ada", body.User.Name)
	assert.NotContains(t, act.Body.String(), "secret1")
	assert.Contains(t, act.Header().Get("Set-Cookie"), auth.UserCookie+"=")

	stored, err := e.store.Users.ByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "secret1"))
	assert.NotEmpty(t, stored.Avatar.URL)

	me := e.json(t, http.MethodGet, "/api/v2/user/getuser", body.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestActivate_ExpiredToken(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusCreated, e.signup(t, "Ada", "ada@example.com", "secret1").Code)

	e.clock = e.clock.Add(61 * time.Minute)
	rec := e.json(t, http.MethodPost, "/api/v2/user/activation", "", map[string]string{
		"activation_token": tokenFromMail(t, e.mailer.sent[0]),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := e.store.Users.ByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestActivate_RejectsSellerToken(t *testing.T) {
	e := newEnv(t)
	sellerTok, err := auth.SignActivation(e.activation, auth.AudienceSellerActivation, pendingUser{
		Name: "Mallory", Email: "mallory@example.com", PasswordHash: "x",
	})
	require.NoError(t, err)

	rec := e.json(t, http.MethodPost, "/api/v2/user/activation", "", map[string]string{"activation_token": sellerTok})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err = e.store.Users.ByEmail(context.Background(), "mallory@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestActivate_EmailTakenMeanwhile(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusCreated, e.signup(t, "Ada", "ada@example.com", "secret1").Code)
	e.seedUser(t, "ada@example.com", "other")

	rec := e.json(t, http.MethodPost, "/api/v2/user/activation", "", map[string]string{
		"activation_token": tokenFromMail(t, e.mailer.sent[0]),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignup_Rejections(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "taken@example.com", "pw12")

	assert.Equal(t, http.StatusConflict, e.signup(t, "Bob", "taken@example.com", "secret1").Code)
	assert.Equal(t, http.StatusBadRequest, e.signup(t, "Bob", "not-an-email", "secret1").Code)

	e.mailer.err = errors.New("relay refused")
	rec := e.signup(t, "Bob", "bob@example.com", "secret1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ada@example.com", "right-pw")

	bad := e.json(t, http.MethodPost, "/api/v2/user/login-user", "", map[string]string{"email": "ada@example.com", "password": "wrong-pw"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.NotContains(t, bad.Body.String(), "token")
	assert.Empty(t, bad.Header().Get("Set-Cookie"))

	unknown := e.json(t, http.MethodPost, "/api/v2/user/login-user", "", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	extra := e.json(t, http.MethodPost, "/api/v2/user/login-user", "", map[string]string{"email": "ada@example.com", "password": "right-pw", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, extra.Code)

	ok := e.json(t, http.MethodPost, "/api/v2/user/login-user", "", map[string]string{"email": "ada@example.com", "password": "right-pw"})
	require.Equal(t, http.StatusCreated, ok.Code)
	assert.Contains(t, ok.Body.String(), `"token":"`)
}

func TestLogout_ClearsCookie(t *testing.T) {
	e := newEnv(t)
	rec := e.json(t, http.MethodGet, "/api/v2/user/logout", "", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAddresses(t *testing.T) {
	e := newEnv(t)
	_, tok := e.seedUser(t, "ada@example.com", "pw12")
	home := map[string]any{"country": "NL", "city": "Utrecht", "address1": "1 Main", "zipCode": "1000", "addressType": "Home"}

	rec := e.json(t, http.MethodPut, "/api/v2/user/update-user-addresses", tok, home)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		User user.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.User.Addresses, 1)
	id := body.User.Addresses[0].ID
	require.NotEmpty(t, id)

	dup := e.json(t, http.MethodPut, "/api/v2/user/update-user-addresses", tok, home)
	assert.Equal(t, http.StatusBadRequest, dup.Code)

	home["_id"] = id
	home["city"] = "Amsterdam"
	upd := e.json(t, http.MethodPut, "/api/v2/user/update-user-addresses", tok, home)
	require.Equal(t, http.StatusOK, upd.Code)
	require.NoError(t, json.Unmarshal(upd.Body.Bytes(), &body))
	require.Len(t, body.User.Addresses, 1)
	assert.Equal(t, "Amsterdam", body.User.Addresses[0].City)

	del := e.json(t, http.MethodDelete, "/api/v2/user/delete-user-address/"+id, tok, nil)
	require.Equal(t, http.StatusOK, del.Code)
	require.NoError(t, json.Unmarshal(del.Body.Bytes(), &body))
	assert.Empty(t, body.User.Addresses)
}

func TestUpdatePassword(t *testing.T) {
	e := newEnv(t)
	u, tok := e.seedUser(t, "ada@example.com", "old-pw")

	wrongOld := e.json(t, http.MethodPut, "/api/v2/user/update-user-password", tok,
		map[string]string{"oldPassword": "nope", "newPassword": "new-pw", "confirmPassword": "new-pw"})
	assert.Equal(t, http.StatusUnauthorized, wrongOld.Code)

	mismatch := e.json(t, http.MethodPut, "/api/v2/user/update-user-password", tok,
		map[string]string{"oldPassword": "old-pw", "newPassword": "new-pw", "confirmPassword": "other"})
	assert.Equal(t, http.StatusBadRequest, mismatch.Code)

	ok := e.json(t, http.MethodPut, "/api/v2/user/update-user-password", tok,
		map[string]string{"oldPassword": "old-pw", "newPassword": "new-pw", "confirmPassword": "new-pw"})
	require.Equal(t, http.StatusOK, ok.Code)

	stored, err := e.store.Users.ByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "new-pw"))
}

func TestUpdateInfo(t *testing.T) {
	e := newEnv(t)
	_, tok := e.seedUser(t, "ada@example.com", "pw12")
	e.seedUser(t, "bob@example.com", "pw12")

	taken := e.json(t, http.MethodPut, "/api/v2/user/update-user-info", tok,
		map[string]string{"email": "bob@example.com", "password": "pw12", "name": "Ada"})
	assert.Equal(t, http.StatusConflict, taken.Code)

	ok := e.json(t, http.MethodPut, "/api/v2/user/update-user-info", tok,
		map[string]string{"email": "ada@example.com", "password": "pw12", "name": "Ada L", "phoneNumber": "555"})
	require.Equal(t, http.StatusCreated, ok.Code)
	assert.Contains(t, ok.Body.String(), `"name":"Ada L"`)
}
