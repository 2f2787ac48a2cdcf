package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the account role
type Role = string

const (
	// RoleAthlete is a training account
	RoleAthlete Role = "athlete"
	// RoleCoach is a coaching account
	RoleCoach Role = "coach"
)

// ValidRole reports whether r belongs to the closed role set.
func ValidRole(r string) bool {
	return r == RoleAthlete || r == RoleCoach
}

// ExperienceLevel is an athlete's self-reported training experience
type ExperienceLevel = string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ValidExperienceLevel reports whether l belongs to the closed level set.
func ValidExperienceLevel(l string) bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// PendingUser is an unconfirmed registrant. The row is created at signup and
// destroyed by activation; its ID becomes the active user's ID.
type PendingUser struct {
	bun.BaseModel   `bun:"table:pending_users,alias:pnd"`
	ID              uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email           string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Role            Role           `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName       string         `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName        string         `bun:"last_name,notnull" json:"last_name,omitempty"`
	Phone           string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash    string         `bun:"password_hash" json:"password_hash,omitempty"`
	ExperienceLevel string         `bun:"experience_level" json:"experience_level,omitempty"`
	Metadata        map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt       *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ToUser builds the active account record for this registrant. The ID is
// carried over so the identifier never changes across activation.
func (p *PendingUser) ToUser() *User {
	return &User{
		ID:            p.ID,
		Email:         p.Email,
		Role:          p.Role,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Phone:         p.Phone,
		PasswordHash:  p.PasswordHash,
		EmailVerified: true,
	}
}

// User is a confirmed, active account. Created exactly once per identifier,
// by activation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          Role           `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string         `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name,notnull" json:"last_name,omitempty"`
	Phone         string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"password_hash,omitempty"`
	EmailVerified bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// AthleteProfile extends an athlete account, created in the same activation
// step as the user row. Coach accounts never get one.
type AthleteProfile struct {
	bun.BaseModel   `bun:"table:athlete_profiles,alias:athp"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID          *uuid.UUID `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User            *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	ExperienceLevel string     `bun:"experience_level,notnull" json:"experience_level,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// CoachProfile is the richer coach extension. It is not created by
// activation; coaches fill it in from their workspace settings.
type CoachProfile struct {
	bun.BaseModel    `bun:"table:coach_profiles,alias:cchp"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID           *uuid.UUID `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User             *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Qualifications   []string   `bun:"qualifications" json:"qualifications,omitempty"`
	Specializations  []string   `bun:"specializations" json:"specializations,omitempty"`
	SubscriptionTier string     `bun:"subscription_tier" json:"subscription_tier,omitempty"`
	WorkspaceName    string     `bun:"workspace_name" json:"workspace_name,omitempty"`
	Public           bool       `bun:"is_public" json:"is_public,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
