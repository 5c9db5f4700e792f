package models

import (
	"strings"
	"time"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// User is a registered chat user. PasswordHash never leaves the server.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Admin is a distinct identity class from User, authenticated separately.
type Admin struct {
	ID           string
	Username     string
	PasswordHash []byte
	IsActive     bool
	CreatedAt    time.Time
}

// UserProfile holds the answers collected during onboarding.
// PregnancyWeek is nil until answered; 0 means not pregnant.
type UserProfile struct {
	Name              string `json:"name"`
	Age               *int   `json:"age"`
	PregnancyWeek     *int   `json:"pregnancyWeek"`
	MedicalConditions string `json:"medicalConditions"`
	IsComplete        bool   `json:"isComplete"`
}

// IsPregnant reports whether the profile describes an ongoing pregnancy.
func (p UserProfile) IsPregnant() bool {
	return p.PregnancyWeek != nil && *p.PregnancyWeek > 0
}

// Populated reports whether every onboarding field has an answer.
// A pregnancy week of zero counts as answered.
func (p UserProfile) Populated() bool {
	return strings.TrimSpace(p.Name) != "" &&
		p.Age != nil &&
		p.PregnancyWeek != nil &&
		strings.TrimSpace(p.MedicalConditions) != ""
}

// ChatSession groups an ordered sequence of messages under one user.
// Sessions are soft-deleted via IsActive.
type ChatSession struct {
	ID        string
	UserID    string
	Title     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is immutable once created. Insertion order is display order.
type ChatMessage struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId,omitempty"`
	Content   string      `json:"content"`
	Role      MessageRole `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
}

// AccessCode gates initial entry to the application. A code is consumable
// only while unused and unexpired; consumption is a single atomic transition.
type AccessCode struct {
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	IsUsed    bool       `json:"isUsed"`
	UsedBy    *string    `json:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// Consumable reports whether the code can still be redeemed at the given time.
func (c AccessCode) Consumable(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}

// SystemLog records an audited action taken by a user or an admin.
type SystemLog struct {
	ID        string
	UserID    *string
	AdminID   *string
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}
