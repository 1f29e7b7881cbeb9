package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Approval workflow states for newly registered residents.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// User represents a resident account. Accounts start in PENDING state and
// must be approved by a village administrator before they gain full access.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             string     `bun:"id,pk,type:uuid"`
	Email          string     `bun:"email,notnull,unique"`
	FullName       string     `bun:"full_name,notnull"`
	Mobile         string     `bun:"mobile"`
	AadharNumber   string     `bun:"aadhar_number"`
	VillageID      string     `bun:"village_id"`
	PasswordHash   string     `bun:"password_hash,notnull"`
	ApprovalStatus string     `bun:"approval_status,notnull,default:'PENDING'"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt    *time.Time `bun:"last_login_at"`

	Roles []*Role `bun:"m2m:user_roles,join:User=Role"`
}

// IsRejected reports whether the account has been refused by an administrator.
func (u *User) IsRejected() bool {
	return u != nil && u.ApprovalStatus == ApprovalRejected
}

// Role groups permissions for assignment to users
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          string    `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Permissions []*Permission `bun:"m2m:role_permissions,join:Role=Permission"`
}

// Permission is a single named capability (e.g. "complaints:create")
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:p"`

	ID          string `bun:"id,pk,type:uuid"`
	Code        string `bun:"code,notnull,unique"`
	Description string `bun:"description"`
}

// UserRole maps users to roles
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	UserID string `bun:"user_id,pk,type:uuid"`
	RoleID string `bun:"role_id,pk,type:uuid"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
	Role *Role `bun:"rel:belongs-to,join:role_id=id"`
}

// RolePermission maps roles to permissions
type RolePermission struct {
	bun.BaseModel `bun:"table:role_permissions,alias:rp"`

	RoleID       string `bun:"role_id,pk,type:uuid"`
	PermissionID string `bun:"permission_id,pk,type:uuid"`

	Role       *Role       `bun:"rel:belongs-to,join:role_id=id"`
	Permission *Permission `bun:"rel:belongs-to,join:permission_id=id"`
}

// RefreshToken stores the SHA-256 hash of an issued refresh token.
// The plaintext token is only ever held by the client.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        string     `bun:"id,pk,type:uuid"`
	UserID    string     `bun:"user_id,notnull,type:uuid"`
	TokenHash string     `bun:"token_hash,notnull,unique"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	RevokedAt *time.Time `bun:"revoked_at"`
}

// Active reports whether the token can still be redeemed at the given time.
func (t *RefreshToken) Active(now time.Time) bool {
	return t != nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
