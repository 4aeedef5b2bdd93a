package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/signage/internal/credentials"
	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/signage/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
	"github.com/Nixie-Tech-LLC/signage/internal/pairing"
	"github.com/Nixie-Tech-LLC/signage/internal/storage"
)

const secret = "test-secret"

type recordingRefresher struct {
	mu       sync.Mutex
	notified []string
}

func (r *recordingRefresher) NotifyRefresh(_ context.Context, displayID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, displayID)
	return true
}

type recordingDropper struct{ dropped []string }

func (d *recordingDropper) Drop(displayID string) { d.dropped = append(d.dropped, displayID) }

type fixture struct {
	t         *testing.T
	store     *db.MemoryStore
	router    *gin.Engine
	refresher *recordingRefresher
	dropper   *recordingDropper
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		t:         t,
		store:     db.NewMemoryStore(),
		router:    gin.New(),
		refresher: &recordingRefresher{},
		dropper:   &recordingDropper{},
	}
	files := storage.NewLocalStorage(t.TempDir())
	svc := pairing.NewService(f.store, credentials.NewIssuer())

	api.MountGroup(f.router, api.GroupConfig{Prefix: "/api/admin"}, MediaFileModule(f.store, files))
	api.MountGroup(f.router, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: secret,
		Users:     f.store,
	},
		DisplayModule(f.store, svc, f.dropper),
		MediaModule(f.store, files),
		PlaylistModule(f.store, f.refresher),
		ScheduleModule(f.store, f.refresher),
	)
	return f
}

// user creates an operator account and returns its bearer token.
func (f *fixture) user(email string) (int, string) {
	id, err := f.store.CreateUser(context.Background(), email, "hash", nil)
	require.NoError(f.t, err)
	token, err := middleware.GenerateJWT(id, secret)
	require.NoError(f.t, err)
	return id, token
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestDisplays_CreateListGetDelete(t *testing.T) {
	f := newFixture(t)
	_, token := f.user("a@example.com")
	_, otherToken := f.user("b@example.com")

	created := decode[packets.DisplayResponse](t, f.do(http.MethodPost, "/api/admin/displays", token, gin.H{"name": "Lobby"}))
	assert.Equal(t, "Lobby", created.Name)
	assert.Len(t, created.InviteCode, 6)
	assert.Equal(t, model.DefaultResolution, created.Resolution)
	assert.False(t, created.IsLinked)
	assert.False(t, created.IsOnline)

	listed := decode[[]packets.DisplayResponse](t, f.do(http.MethodGet, "/api/admin/displays", token, nil))
	require.Len(t, listed, 1)
	assert.Empty(t, decode[[]packets.DisplayResponse](t, f.do(http.MethodGet, "/api/admin/displays", otherToken, nil)))

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/displays/"+created.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/admin/displays/missing", token, nil).Code)

	got := decode[packets.DisplayResponse](t, f.do(http.MethodGet, "/api/admin/displays/"+created.ID, token, nil))
	assert.Equal(t, created.ID, got.ID)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/admin/displays/"+created.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/admin/displays/"+created.ID, token, nil).Code)
	assert.Equal(t, []string{created.ID}, f.dropper.dropped)
}

func TestDisplays_IsOnline(t *testing.T) {
	f := newFixture(t)
	userID, token := f.user("a@example.com")
	ctx := context.Background()

	display, err := f.store.CreateDisplay(ctx, "Lobby", "ABC123", "1080p", userID)
	require.NoError(t, err)
	_, err = f.store.SetDisplayLinked(ctx, display.ID, "tok", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	got := decode[packets.DisplayResponse](t, f.do(http.MethodGet, "/api/admin/displays/"+display.ID, token, nil))
	assert.True(t, got.IsOnline)

	require.NoError(t, f.store.UpdateLastCheckIn(ctx, display.ID, time.Now().Add(-11*time.Minute)))
	got = decode[packets.DisplayResponse](t, f.do(http.MethodGet, "/api/admin/displays/"+display.ID, token, nil))
	assert.False(t, got.IsOnline)
}

func TestDisplays_RequireAuth(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/admin/displays", "", nil).Code)
}

func upload(f *fixture, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(f.t, err)
	_, err = part.Write(content)
	require.NoError(f.t, err)
	require.NoError(f.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestMedia_UploadListServe(t *testing.T) {
	f := newFixture(t)
	_, token := f.user("a@example.com")

	media := decode[model.Media](t, upload(f, token, "poster.png", "image/png", []byte("png-bytes")))
	assert.Equal(t, model.MediaTypeImage, media.Type)
	assert.Equal(t, "poster.png", media.Name)
	assert.Equal(t, int64(len("png-bytes")), media.FileSize)

	video := decode[model.Media](t, upload(f, token, "clip.mp4", "video/mp4", []byte("mp4")))
	assert.Equal(t, model.MediaTypeVideo, video.Type)

	assert.Equal(t, http.StatusBadRequest, upload(f, token, "doc.pdf", "application/pdf", []byte("pdf")).Code)

	listed := decode[[]model.Media](t, f.do(http.MethodGet, "/api/admin/media", token, nil))
	assert.Len(t, listed, 2)

	// file fetch is public
	w := f.do(http.MethodGet, "/api/admin/media/file/"+media.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/admin/media/file/missing", "", nil).Code)
}

func TestMediaType(t *testing.T) {
	kind, ok := mediaType("image/jpeg")
	assert.True(t, ok)
	assert.Equal(t, model.MediaTypeImage, kind)

	kind, ok = mediaType("video/webm")
	assert.True(t, ok)
	assert.Equal(t, model.MediaTypeVideo, kind)

	_, ok = mediaType("text/plain")
	assert.False(t, ok)
}

// seed gives user a display, a playlist and an image.
func seed(t *testing.T, store *db.MemoryStore, userID int, code string) (model.Display, model.Playlist, model.Media) {
	ctx := context.Background()
	display, err := store.CreateDisplay(ctx, "Lobby", code, "1080p", userID)
	require.NoError(t, err)
	playlist, err := store.CreatePlaylist(ctx, "Morning", userID)
	require.NoError(t, err)
	media, err := store.CreateMedia(ctx, model.Media{Name: "a.png", Type: model.MediaTypeImage, Filename: "a.png", MimeType: "image/png", ClientID: userID})
	require.NoError(t, err)
	return display, playlist, media
}

func TestPlaylists_AndItems(t *testing.T) {
	f := newFixture(t)
	userID, token := f.user("a@example.com")
	otherID, otherToken := f.user("b@example.com")
	_, _, foreignMedia := seed(t, f.store, otherID, "ZZZZZZ")
	_, _, media := seed(t, f.store, userID, "AAAAAA")

	pl := decode[model.Playlist](t, f.do(http.MethodPost, "/api/admin/playlists", token, gin.H{"name": "Evening"}))
	assert.Equal(t, userID, pl.ClientID)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/admin/playlists", token, gin.H{}).Code)

	assert.Len(t, decode[[]model.Playlist](t, f.do(http.MethodGet, "/api/admin/playlists", token, nil)), 2)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/playlists/"+pl.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/admin/playlists/missing", token, nil).Code)

	item := decode[model.PlaylistItem](t, f.do(http.MethodPost, "/api/admin/playlist-items", token,
		gin.H{"playlistId": pl.ID, "mediaId": media.ID, "order": 0}))
	assert.Equal(t, model.DefaultItemDuration, item.Duration)

	w := f.do(http.MethodPost, "/api/admin/playlist-items", token, gin.H{"playlistId": pl.ID, "mediaId": foreignMedia.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/admin/playlist-items", otherToken,
		gin.H{"playlistId": pl.ID, "mediaId": foreignMedia.ID}).Code)

	items := decode[[]model.PlaylistItem](t, f.do(http.MethodGet, "/api/admin/playlist-items/"+pl.ID, token, nil))
	require.Len(t, items, 1)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/playlist-items/"+pl.ID, otherToken, nil).Code)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/admin/playlist-items/"+item.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/admin/playlist-items/"+item.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/admin/playlist-items/"+item.ID, token, nil).Code)
}

func TestPlaylistItems_RefreshAssignedDisplays(t *testing.T) {
	f := newFixture(t)
	userID, token := f.user("a@example.com")
	display, playlist, media := seed(t, f.store, userID, "AAAAAA")

	_, err := f.store.CreateSchedule(context.Background(), model.Schedule{DisplayID: display.ID, PlaylistID: playlist.ID})
	require.NoError(t, err)

	f.do(http.MethodPost, "/api/admin/playlist-items", token, gin.H{"playlistId": playlist.ID, "mediaId": media.ID})
	assert.Equal(t, []string{display.ID}, f.refresher.notified)
}

func TestSchedules_CreateNotifiesDisplay(t *testing.T) {
	f := newFixture(t)
	userID, token := f.user("a@example.com")
	display, playlist, _ := seed(t, f.store, userID, "AAAAAA")

	resp := decode[packets.ScheduleResponse](t, f.do(http.MethodPost, "/api/admin/schedules", token,
		gin.H{"displayId": display.ID, "playlistId": playlist.ID, "alwaysOn": true, "priority": 2}))
	assert.True(t, resp.Notified)
	assert.True(t, resp.AlwaysOn)
	assert.Equal(t, 2, resp.Priority)
	assert.Equal(t, []string{display.ID}, f.refresher.notified)

	updated, err := f.store.GetDisplay(context.Background(), display.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedPlaylistID)
	assert.Equal(t, playlist.ID, *updated.AssignedPlaylistID)

	listed := decode[[]model.Schedule](t, f.do(http.MethodGet, "/api/admin/schedules", token, nil))
	require.Len(t, listed, 1)
	assert.Equal(t, resp.ID, listed[0].ID)
}

func TestSchedules_Ownership(t *testing.T) {
	f := newFixture(t)
	userID, token := f.user("a@example.com")
	otherID, otherToken := f.user("b@example.com")
	display, playlist, _ := seed(t, f.store, userID, "AAAAAA")
	_, foreignPlaylist, _ := seed(t, f.store, otherID, "BBBBBB")

	w := f.do(http.MethodPost, "/api/admin/schedules", otherToken, gin.H{"displayId": display.ID, "playlistId": playlist.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/admin/schedules", token, gin.H{"displayId": display.ID, "playlistId": foreignPlaylist.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden - playlist not found or access denied"}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/admin/schedules", token, gin.H{
		"displayId":  display.ID,
		"playlistId": playlist.ID,
		"startDate":  "2025-06-02T00:00:00Z",
		"endDate":    "2025-06-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.refresher.notified)

	sc := decode[packets.ScheduleResponse](t, f.do(http.MethodPost, "/api/admin/schedules", token,
		gin.H{"displayId": display.ID, "playlistId": playlist.ID}))
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/admin/schedules/"+sc.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/admin/schedules/"+sc.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/admin/schedules/"+sc.ID, token, nil).Code)
}
