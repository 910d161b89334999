package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-support-board/internal/domain"
	"go-support-board/internal/repo"
	"go-support-board/internal/sanitize"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func TestReconcileCreatesUser(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(repo.NewUserRepo(db))
	ctx := context.Background()

	id := uuid.NewString()
	u, created, err := r.Reconcile(ctx, Payload{UserID: id, Username: "테스트유저", IsAdmin: false})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, u.UUID)
	assert.Equal(t, "테스트유저", u.Username)
	assert.False(t, u.IsAdmin)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Where("uuid = ?", id).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestReconcileIsIdempotentOnIdentifier(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(repo.NewUserRepo(db))
	ctx := context.Background()

	id := uuid.NewString()
	_, created, err := r.Reconcile(ctx, Payload{UserID: id, Username: "before", IsAdmin: false})
	require.NoError(t, err)
	require.True(t, created)

	// 第二次对账：无条件覆盖显示名与管理员位，且报告“非新建”
	u, created, err := r.Reconcile(ctx, Payload{UserID: id, Username: "after", IsAdmin: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "after", u.Username)
	assert.True(t, u.IsAdmin)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestReconcileRejectsBadIdentifier(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(repo.NewUserRepo(db))

	_, _, err := r.Reconcile(context.Background(), Payload{UserID: "not-a-uuid", Username: "x"})
	require.ErrorIs(t, err, ErrBadIdentifier)

	// 硬失败：不允许任何部分写入
	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestReconcileRequiresUsername(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(repo.NewUserRepo(db))

	_, _, err := r.Reconcile(context.Background(), Payload{UserID: uuid.NewString(), Username: "  "})
	var ve *sanitize.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Field)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestReconcileSanitizesUsername(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(repo.NewUserRepo(db))

	u, _, err := r.Reconcile(context.Background(), Payload{UserID: uuid.NewString(), Username: "<b>admin</b>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;admin&lt;/b&gt;", u.Username)
}
