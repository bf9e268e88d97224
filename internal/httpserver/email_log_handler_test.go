package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/model"
	"estatehub/internal/util"
)

type fakeEmailLogStore struct {
	logs      []model.EmailLog
	err       error
	gotUserID int
	gotLimit  int
}

func (f *fakeEmailLogStore) ListByUser(_ context.Context, userID, limit int) ([]model.EmailLog, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	return f.logs, f.err
}

func emailLogTestRouter(store *fakeEmailLogStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware("secret"))
	r.GET("/emails", NewEmailLogHandler(store).List)
	return r
}

func TestEmailLogListReturnsOwnHistory(t *testing.T) {
	store := &fakeEmailLogStore{logs: []model.EmailLog{
		{ID: 1, UserID: 42, EmailType: model.NotifTypeCostAdded, Status: model.EmailStatusSent},
	}}
	r := emailLogTestRouter(store)

	token, err := util.GenerateJWT(42, "secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 42, store.gotUserID, "only the caller's own rows")
	assert.Equal(t, defaultEmailLogLimit, store.gotLimit)
	assert.Contains(t, w.Body.String(), "cost_added")
}

func TestEmailLogListHonorsLimitQuery(t *testing.T) {
	store := &fakeEmailLogStore{}
	r := emailLogTestRouter(store)

	token, err := util.GenerateJWT(42, "secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/emails?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, store.gotLimit)
}

func TestEmailLogListStoreFailure(t *testing.T) {
	store := &fakeEmailLogStore{err: errors.New("db down")}
	r := emailLogTestRouter(store)

	token, err := util.GenerateJWT(42, "secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
