package database

import (
	"path/filepath"
	"testing"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDatabase = "foodgram"
	cfg.DBUser = "user"
	cfg.DBPassword = "pass"

	for _, dbType := range []string{"mysql", "mariadb", "postgres", "sqlite", "sqlite-pure", "sqlserver"} {
		cfg.DBType = dbType
		dialector, err := Dialector(cfg)
		require.NoError(t, err, dbType)
		assert.NotNil(t, dialector, dbType)
	}

	cfg.DBType = "oracle"
	_, err := Dialector(cfg)
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestConnectAndMigrate(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBType = "sqlite-pure"
	cfg.DBDatabase = filepath.Join(t.TempDir(), "foodgram.db")
	cfg.DBLogLevel = "silent"

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	// Migrations are repeatable
	require.NoError(t, AutoMigrate(db))

	tag := models.Tag{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, db.Create(&tag).Error)

	dup := models.Tag{Name: "Завтрак", Color: "#000000", Slug: "other"}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "got %v", err)

	user := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	self := models.Follow{FollowerID: user.ID, AuthorID: user.ID}
	assert.Error(t, db.Omit("Follower", "Author").Create(&self).Error)
}
