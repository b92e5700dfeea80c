package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"golang.org/x/crypto/bcrypt"

	"github.com/caplc/backend/core"
)

// Roles
const (
	RoleGuest       = "guest"
	RoleParticipant = "participant"
	RoleModerator   = "moderator"
	RoleCoach       = "coach"
	RoleAdmin       = "admin"
)

var (
	AllRoles = []string{RoleGuest, RoleParticipant, RoleModerator, RoleCoach, RoleAdmin}

	rolePriorities = map[string]int{
		RoleGuest:       0,
		RoleParticipant: 1,
		RoleModerator:   2,
		RoleCoach:       3,
		RoleAdmin:       4,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// Roles is the list of roles held by a User.
// Older documents store a single role string; both forms decode to a list.
type Roles []string

func (r *Roles) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	if s, ok := raw.StringValueOK(); ok {
		*r = Roles{s}
		return nil
	}
	if t == bsontype.Null {
		*r = nil
		return nil
	}
	var roles []string
	if err := raw.Unmarshal(&roles); err != nil {
		return err
	}
	*r = roles
	return nil
}

type User struct {
	ID                     string    `json:"id" bson:"_id"`
	FirstName              string    `json:"firstName" bson:"firstName"`
	LastName               string    `json:"lastName" bson:"lastName"`
	Email                  string    `json:"email" bson:"email"`
	PasswordHash           []byte    `json:"-" bson:"password"`
	Roles                  Roles     `json:"role" bson:"role"`
	City                   string    `json:"city,omitempty" bson:"city,omitempty"`
	WorkshopParticipations []string  `json:"workshopParticipations" bson:"workshopParticipations"`
	WorkshopsCount         int       `json:"workshopsCount" bson:"workshopsCount"`
	AwarenessRaisedCount   int       `json:"awarenessRaisedCount" bson:"awarenessRaisedCount"`
	CreatedAt              time.Time `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt              time.Time `json:"updatedAt" bson:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(role string) bool {
	return core.StringInSlice(role, u.Roles)
}

// AddRole adds role to the user's roles if not already held.
func (u *User) AddRole(role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

// MaxRole returns the highest ranked role held by the user.
func (u *User) MaxRole() string {
	max := ""
	for _, role := range u.Roles {
		if max == "" || RolePriority(role) > RolePriority(max) {
			max = role
		}
	}
	return max
}

// HasAccess reports whether the user's highest role ranks at least as high as level.
func (u *User) HasAccess(level string) bool {
	return MaxRolePriority(u.Roles) >= RolePriority(level)
}

func (u *User) IsAdmin() bool       { return u.HasRole(RoleAdmin) }
func (u *User) IsCoach() bool       { return u.HasRole(RoleCoach) || u.IsAdmin() }
func (u *User) IsModerator() bool   { return u.HasRole(RoleModerator) }
func (u *User) IsParticipant() bool { return u.HasRole(RoleParticipant) }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ParticipatesIn reports whether workshopID is in the user's workshop participations.
func (u *User) ParticipatesIn(workshopID string) bool {
	return core.StringInSlice(workshopID, u.WorkshopParticipations)
}

func (u *User) AddParticipation(workshopID string) {
	if !u.ParticipatesIn(workshopID) {
		u.WorkshopParticipations = append(u.WorkshopParticipations, workshopID)
	}
}

func (u *User) RemoveParticipation(workshopID string) {
	u.WorkshopParticipations = core.RemoveString(u.WorkshopParticipations, workshopID)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string   `json:"firstName" validate:"required,min=1,max=64"`
	LastName  string   `json:"lastName" validate:"required,min=1,max=64"`
	Email     string   `json:"email" validate:"required,email,max=256"`
	Password  string   `json:"password" validate:"omitempty"`
	Roles     []string `json:"role" validate:"omitempty,allroles"`
	City      string   `json:"city" validate:"omitempty"`
}

// NewCoach contains information needed to create a coach (or an admin).
type NewCoach struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=64"`
	LastName  string `json:"lastName" validate:"required,min=1,max=64"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required"`
	City      string `json:"city" validate:"required,city"`
	Role      string `json:"role" validate:"required,oneof=coach admin"`
}

// NewModerator contains information needed to create a moderator.
type NewModerator struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=64"`
	LastName  string `json:"lastName" validate:"required,min=1,max=64"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required"`
}

type ResetUserPassword struct {
	UID      string `json:"uid" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Roles []string // users holding any of these roles
}
