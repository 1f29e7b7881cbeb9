package sdk

import (
	"encoding/json"
	"strings"
)

// ApprovalStatus gates access to approved-only portal features.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Role is a named role granted to a user.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both the current {id, name} shape and the legacy
// bare-string shape some older endpoints still emit.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Name = s
		return nil
	}
	type alias Role
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Role(a)
	return nil
}

// User is the cached projection of the authenticated principal.
type User struct {
	ID             string         `json:"userId"`
	Email          string         `json:"email"`
	FullName       string         `json:"fullName"`
	Mobile         string         `json:"mobile,omitempty"`
	AadharNumber   string         `json:"aadharNumber,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	Roles          []Role         `json:"roles"`
	AllPermissions []string       `json:"allPermissions"`
}

// HasRole reports role membership by name, case-insensitively.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the flattened permission set contains p.
func (u *User) HasPermission(p string) bool {
	if u == nil {
		return false
	}
	for _, have := range u.AllPermissions {
		if have == p {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the user holds at least one of the given
// permissions.
func (u *User) HasAnyPermission(perms ...string) bool {
	for _, p := range perms {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

// IsApproved reports whether the account has cleared the approval workflow.
func (u *User) IsApproved() bool {
	return u != nil && u.ApprovalStatus == ApprovalApproved
}

// DecodeUser normalizes a raw user payload into the canonical User record.
// Older portal endpoints used several field-naming conventions (_id vs id vs
// userId, name vs fullName, phone vs mobile); this is the only place those
// aliases are reconciled.
func DecodeUser(raw json.RawMessage) (*User, error) {
	var aux struct {
		UserID         string         `json:"userId"`
		ID             string         `json:"id"`
		LegacyID       string         `json:"_id"`
		Email          string         `json:"email"`
		FullName       string         `json:"fullName"`
		Name           string         `json:"name"`
		Mobile         string         `json:"mobile"`
		Phone          string         `json:"phone"`
		AadharNumber   string         `json:"aadharNumber"`
		ApprovalStatus string         `json:"approvalStatus"`
		Status         string         `json:"status"`
		Roles          []Role         `json:"roles"`
		AllPermissions []string       `json:"allPermissions"`
		Permissions    []string       `json:"permissions"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	u := &User{
		ID:             firstNonEmpty(aux.UserID, aux.ID, aux.LegacyID),
		Email:          aux.Email,
		FullName:       firstNonEmpty(aux.FullName, aux.Name),
		Mobile:         firstNonEmpty(aux.Mobile, aux.Phone),
		AadharNumber:   aux.AadharNumber,
		Roles:          aux.Roles,
		AllPermissions: aux.AllPermissions,
	}
	if len(u.AllPermissions) == 0 {
		u.AllPermissions = aux.Permissions
	}

	status := strings.ToUpper(firstNonEmpty(aux.ApprovalStatus, aux.Status))
	switch ApprovalStatus(status) {
	case ApprovalApproved, ApprovalRejected:
		u.ApprovalStatus = ApprovalStatus(status)
	default:
		u.ApprovalStatus = ApprovalPending
	}
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
