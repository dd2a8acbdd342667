package models

// Profile carries read-only display data for students and teachers. Profiles
// are owned by the identity provider; this API only denormalizes them into
// grid and report payloads.
type Profile struct {
	ID        string  `db:"id" json:"id"`
	TenantID  string  `db:"tenant_id" json:"tenant_id"`
	FullName  string  `db:"full_name" json:"full_name"`
	Role      string  `db:"role" json:"role"`
	Module    *string `db:"module" json:"module,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}
