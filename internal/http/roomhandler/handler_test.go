package roomhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/chat"
)

func newTestRouter(t *testing.T) (*gin.Engine, *chat.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := chat.NewRegistry("Lobby")
	engine := gin.New()
	New(registry).Register(engine)
	return engine, registry
}

func TestListRooms(t *testing.T) {
	engine, registry := newTestRouter(t)
	require.NoError(t, registry.CreateRoom("party"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var infos []chat.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{"Lobby", "party"}, names)
}

func TestRoomInfo(t *testing.T) {
	engine, registry := newTestRouter(t)
	require.NoError(t, registry.CreateRoom("party"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/party", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info chat.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, chat.RoomInfo{Name: "party", Members: 0}, info)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRoom(t *testing.T) {
	engine, registry := newTestRouter(t)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post(`{"name":"party"}`).Code)
	assert.NotNil(t, registry.Room("party"))

	assert.Equal(t, http.StatusConflict, post(`{"name":"party"}`).Code)
	assert.Equal(t, http.StatusConflict, post(`{"name":"lobby"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"name":"   "}`).Code)
}
