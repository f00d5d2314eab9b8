package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Identity is the canonical authentication record. Username and email are
// unique across all identities; the database constraints are the final
// arbiter, validation re-checks before every write.
type Identity struct {
	bun.BaseModel `bun:"table:identities,alias:idn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Profile is the user-facing record owned 1:1 by an Identity. Deleting the
// identity cascades to the profile at the schema level.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	IdentityID    uuid.UUID  `bun:"identity_id,notnull,unique,type:uuid" json:"identity_id,omitempty"`
	Identity      *Identity  `bun:"rel:belongs-to,join:identity_id=id" json:"identity,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`

	// LastActivityAt is populated by profile queries from the activities
	// table. It is never written back.
	LastActivityAt *time.Time `bun:"last_activity_at,scanonly" json:"last_activity_at,omitempty"`
}

// Username is a pass-through view of the owned identity.
func (p *Profile) Username() string {
	if p == nil || p.Identity == nil {
		return ""
	}
	return p.Identity.Username
}

// Email is a pass-through view of the owned identity.
func (p *Profile) Email() string {
	if p == nil || p.Identity == nil {
		return ""
	}
	return p.Identity.Email
}

// Activity is a single timestamped event in a profile's activity record.
// The lifecycle service only ever reads the most recent one.
type Activity struct {
	bun.BaseModel `bun:"table:activities,alias:act"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ProfileID     uuid.UUID `bun:"profile_id,notnull,type:uuid" json:"profile_id,omitempty"`
	Kind          string    `bun:"kind" json:"kind,omitempty"`
	OccurredAt    time.Time `bun:"occurred_at,notnull" json:"occurred_at,omitempty"`
}

// NewActivity builds an event for a profile at the given instant.
func NewActivity(profileID uuid.UUID, kind string, occurredAt time.Time) *Activity {
	return &Activity{
		ID:         uuid.New(),
		ProfileID:  profileID,
		Kind:       kind,
		OccurredAt: occurredAt,
	}
}
