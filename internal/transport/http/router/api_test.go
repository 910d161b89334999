package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-support-board/internal/core/session"
	"go-support-board/internal/domain"
	"go-support-board/internal/policy"
)

func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Tag{}, &domain.Post{}, &domain.Comment{}))

	sm := &session.Manager{
		Secret:     []byte("test-secret"),
		Issuer:     "support-board-test",
		TTL:        time.Hour,
		CookieName: "sb_session",
	}
	return NewAPIEngine(zap.NewNop(), db, nil, sm), db
}

func perform(t *testing.T, e *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if raw, ok := body.([]byte); ok {
		rd = bytes.NewReader(raw)
	} else if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// syncUser 走一遍身份对账，返回带会话的 cookie
func syncUser(t *testing.T, e *gin.Engine, id, name string, admin bool) []*http.Cookie {
	t.Helper()
	w := perform(t, e, http.MethodPost, "/api/v1/users/sync",
		gin.H{"user_id": id, "username": name, "is_admin": admin})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestUserSyncAndMe(t *testing.T) {
	e, _ := newTestEnv(t)
	id := uuid.NewString()

	w := perform(t, e, http.MethodPost, "/api/v1/users/sync",
		gin.H{"user_id": id, "username": "first", "is_admin": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, id, body["user_id"])
	assert.Equal(t, "first", body["username"])
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// 同一标识再次对账：覆盖显示名，状态退回 200
	w = perform(t, e, http.MethodPost, "/api/v1/users/sync",
		gin.H{"user_id": id, "username": "second", "is_admin": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "second", body["username"])
	assert.Equal(t, true, body["is_admin"])
	cookies = w.Result().Cookies()

	w = perform(t, e, http.MethodGet, "/api/v1/users/me", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, id, body["user_id"])
	assert.Equal(t, "second", body["username"])

	// 无会话则 401
	w = perform(t, e, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserSyncBadIdentifier(t *testing.T) {
	e, db := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/users/sync",
		gin.H{"user_id": "not-a-uuid", "username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = perform(t, e, http.MethodPost, "/api/v1/users/sync",
		gin.H{"user_id": uuid.NewString(), "username": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestPostCreateEscapesAndLists(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title":   `<script>alert("xss")</script>`,
		"content": "body text",
		"tags":    []string{"bug", "help"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	title := body["title"].(string)
	assert.NotContains(t, title, "<script>")
	assert.Contains(t, title, "&lt;script&gt;")
	assert.Equal(t, "Anonymous", body["author"])

	w = perform(t, e, http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.EqualValues(t, 1, list["count"])
	rows := list["posts"].([]any)
	row := rows[0].(map[string]any)
	assert.Equal(t, title, row["title"])
	assert.ElementsMatch(t, []any{"bug", "help"}, row["tags"])
}

func TestAnonymousPrivatePostRejected(t *testing.T) {
	e, db := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "secret", "content": "body", "is_private": true,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 拒绝必须发生在任何写入之前
	var n int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestPrivatePostAccessMatrix(t *testing.T) {
	e, _ := newTestEnv(t)

	ownerCk := syncUser(t, e, uuid.NewString(), "owner", false)
	otherCk := syncUser(t, e, uuid.NewString(), "other", false)
	adminCk := syncUser(t, e, uuid.NewString(), "admin", true)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "private note", "content": "only mine", "is_private": true,
	}, ownerCk...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	postID := int(decode(t, w)["id"].(float64))
	path := fmt.Sprintf("/api/v1/posts/%d", postID)

	w = perform(t, e, http.MethodGet, path, nil, ownerCk...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private note", decode(t, w)["title"])

	w = perform(t, e, http.MethodGet, path, nil, otherCk...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(t, e, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(t, e, http.MethodGet, path, nil, adminCk...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private note", decode(t, w)["title"])

	// 写操作同一套门禁
	w = perform(t, e, http.MethodPut, path, gin.H{"title": "hijack"}, otherCk...)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = perform(t, e, http.MethodDelete, path, nil, otherCk...)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = perform(t, e, http.MethodPost, path+"/comments", gin.H{"content": "hi"}, otherCk...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListRedactsPrivatePosts(t *testing.T) {
	e, _ := newTestEnv(t)
	ownerCk := syncUser(t, e, uuid.NewString(), "owner", false)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "hidden agenda", "content": "secret body",
		"tags": []string{"secret"}, "is_private": true,
	}, ownerCk...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	postID := int(decode(t, w)["id"].(float64))

	w = perform(t, e, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID),
		gin.H{"content": "note to self"}, ownerCk...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = perform(t, e, http.MethodPost, "/api/v1/posts",
		gin.H{"title": "public post", "content": "open body"})
	require.Equal(t, http.StatusCreated, w.Code)

	// 匿名列表：私密行保留存在与元数据，内容打码
	w = perform(t, e, http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.EqualValues(t, 2, list["count"])

	var private map[string]any
	for _, r := range list["posts"].([]any) {
		row := r.(map[string]any)
		if row["is_private"] == true {
			private = row
		}
	}
	require.NotNil(t, private)
	assert.Equal(t, policy.RedactedTitle, private["title"])
	assert.Equal(t, "", private["content"])
	assert.Empty(t, private["tags"])
	assert.EqualValues(t, 1, private["comment_count"])

	// 属主看自己的列表不打码
	w = perform(t, e, http.MethodGet, "/api/v1/posts", nil, ownerCk...)
	require.Equal(t, http.StatusOK, w.Code)
	titlesSeen := []string{}
	for _, r := range decode(t, w)["posts"].([]any) {
		titlesSeen = append(titlesSeen, r.(map[string]any)["title"].(string))
	}
	assert.Contains(t, titlesSeen, "hidden agenda")
}

func TestPostUpdateKeepsAbsentFields(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "original", "content": "original body", "author": "alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := int(decode(t, w)["id"].(float64))
	path := fmt.Sprintf("/api/v1/posts/%d", postID)

	w = perform(t, e, http.MethodPut, path, gin.H{"is_resolved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "original", body["title"])
	assert.Equal(t, "original body", body["content"])
	assert.Equal(t, true, body["is_resolved"])

	// 空串同样视为“保持原值”
	w = perform(t, e, http.MethodPut, path, gin.H{"title": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "original", decode(t, w)["title"])

	w = perform(t, e, http.MethodPut, path, gin.H{"title": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", decode(t, w)["title"])
}

func TestPostDeleteThenNotFound(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts",
		gin.H{"title": "doomed", "content": "x"})
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/v1/posts/%d", int(decode(t, w)["id"].(float64)))

	w = perform(t, e, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, e, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, e, http.MethodGet, "/api/v1/posts/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentCreate(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts",
		gin.H{"title": "open thread", "content": "x"})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := int(decode(t, w)["id"].(float64))

	w = perform(t, e, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID),
		gin.H{"content": "<i>first</i>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "&lt;i&gt;first&lt;/i&gt;", body["content"])
	assert.Equal(t, "Anonymous", body["author"])

	// 详情带评论且计数一致
	w = perform(t, e, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", postID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.EqualValues(t, 1, detail["comment_count"])
	assert.Len(t, detail["comments"].([]any), 1)

	w = perform(t, e, http.MethodPost, "/api/v1/posts/99999/comments",
		gin.H{"content": "lost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagsEndpoint(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "tagged", "content": "x", "tags": []string{"bug", "feature"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, e, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode(t, w)["tags"].([]any)
	names := make([]string, 0, len(tags))
	for _, tg := range tags {
		names = append(names, tg.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"bug", "feature"}, names)
}

func TestValidationRejections(t *testing.T) {
	e, db := newTestEnv(t)

	// 超长标题
	w := perform(t, e, http.MethodPost, "/api/v1/posts",
		gin.H{"title": strings.Repeat("a", 201), "content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 标签超过上限
	tags := make([]string, 11)
	for i := range tags {
		tags[i] = fmt.Sprintf("t%d", i)
	}
	w = perform(t, e, http.MethodPost, "/api/v1/posts",
		gin.H{"title": "ok", "content": "x", "tags": tags})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 请求体超过 50KiB
	big := fmt.Sprintf(`{"title":"ok","content":%q}`, strings.Repeat("a", 51*1024))
	w = perform(t, e, http.MethodPost, "/api/v1/posts", []byte(big))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非法 JSON
	w = perform(t, e, http.MethodPost, "/api/v1/posts", []byte(`{"title":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestUpdateRejectionLeavesPostUntouched(t *testing.T) {
	e, _ := newTestEnv(t)

	w := perform(t, e, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "original", "content": "original body", "tags": []string{"bug"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/v1/posts/%d", int(decode(t, w)["id"].(float64)))

	assertUnchanged := func() {
		w := perform(t, e, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "original", body["title"])
		assert.Equal(t, "original body", body["content"])
		assert.ElementsMatch(t, []any{"bug"}, body["tags"])
	}

	// 标签非法时同请求里合法的字段也不能落库
	tags := make([]string, 11)
	for i := range tags {
		tags[i] = fmt.Sprintf("t%d", i)
	}
	w = perform(t, e, http.MethodPut, path, gin.H{"title": "changed", "tags": tags})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertUnchanged()

	w = perform(t, e, http.MethodPut, path,
		gin.H{"title": "changed", "tags": []string{strings.Repeat("x", 51)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertUnchanged()

	// 超长标题同理
	w = perform(t, e, http.MethodPut, path,
		gin.H{"title": strings.Repeat("a", 201), "content": "changed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertUnchanged()
}

func TestHealth(t *testing.T) {
	e, _ := newTestEnv(t)
	w := perform(t, e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
