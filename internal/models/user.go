package models

import (
	"time"
)

// User is a registered account. Email is the login identifier.
type User struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string    `gorm:"size:254;not null;uniqueIndex:idx_users_email" json:"email"`
	Username   string    `gorm:"size:150;not null;uniqueIndex:idx_users_username" json:"username"`
	FirstName  string    `gorm:"size:150;not null" json:"first_name"`
	LastName   string    `gorm:"size:150;not null" json:"last_name"`
	Password   string    `gorm:"size:128;not null" json:"-"`
	IsActive   bool      `gorm:"not null;default:true" json:"-"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Follow is a directed edge from a follower to an author.
type Follow struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	FollowerID uint64    `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follow_self,follower_id <> author_id"`
	AuthorID   uint64    `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:create_at"`
}

// RevokedToken records the id of a token invalidated by logout. Rows past
// ExpiresAt can be purged; the token would be rejected as expired anyway.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:36"`
	UserID    uint64    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Follow
func (Follow) TableName() string {
	return "follows"
}

// TableName overrides the table name for RevokedToken
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
