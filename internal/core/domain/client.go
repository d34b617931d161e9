package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a persisted client record. Optional fields are nil when unset.
type Client struct {
	ID        string    `db:"id"` // UUID v7
	Name      string    `db:"name"`
	TaxID     *string   `db:"tax_id"` // CPF/CNPJ
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Address   *string   `db:"address"`
	Note      *string   `db:"note"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ClientFields holds the caller-supplied fields of a new client.
type ClientFields struct {
	Name    string
	TaxID   *string
	Email   *string
	Phone   *string
	Address *string
	Note    *string
}

// ClientPatch is a partial update. Nil fields are left untouched.
type ClientPatch struct {
	Name    *string
	TaxID   *string
	Email   *string
	Phone   *string
	Address *string
	Note    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.TaxID == nil && p.Email == nil &&
		p.Phone == nil && p.Address == nil && p.Note == nil
}

// NewClient builds a client with a fresh ID and equal timestamps.
func NewClient(fields ClientFields, now time.Time) Client {
	now = now.UTC()
	return Client{
		ID:        newID(),
		Name:      fields.Name,
		TaxID:     cloneString(fields.TaxID),
		Email:     cloneString(fields.Email),
		Phone:     cloneString(fields.Phone),
		Address:   cloneString(fields.Address),
		Note:      cloneString(fields.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply returns a copy of c with the patch applied and UpdatedAt advanced.
// UpdatedAt always moves forward, even when the clock has not.
func (c Client) Apply(p ClientPatch, now time.Time) Client {
	out := c.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.TaxID != nil {
		out.TaxID = cloneString(p.TaxID)
	}
	if p.Email != nil {
		out.Email = cloneString(p.Email)
	}
	if p.Phone != nil {
		out.Phone = cloneString(p.Phone)
	}
	if p.Address != nil {
		out.Address = cloneString(p.Address)
	}
	if p.Note != nil {
		out.Note = cloneString(p.Note)
	}
	out.UpdatedAt = NextUpdatedAt(c.UpdatedAt, now)
	return out
}

// Clone returns a deep copy so callers never share optional field storage.
func (c Client) Clone() Client {
	out := c
	out.TaxID = cloneString(c.TaxID)
	out.Email = cloneString(c.Email)
	out.Phone = cloneString(c.Phone)
	out.Address = cloneString(c.Address)
	out.Note = cloneString(c.Note)
	return out
}

// NextUpdatedAt returns now in UTC, or prev plus one microsecond when the
// clock has not advanced past prev.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = now.UTC()
	if !now.After(prev) {
		return prev.Add(time.Microsecond).UTC()
	}
	return now
}

// LookupKey addresses a single client. Empty fields are absent; ID wins over
// TaxID, which wins over Email.
type LookupKey struct {
	ID    string
	TaxID string
	Email string
}

// ByID is a LookupKey for an identifier.
func ByID(id string) LookupKey {
	return LookupKey{ID: id}
}

// IsZero reports whether no field of the key is populated.
func (k LookupKey) IsZero() bool {
	return k.ID == "" && k.TaxID == "" && k.Email == ""
}

// Matches reports whether c is the record k resolves to.
func (k LookupKey) Matches(c Client) bool {
	switch {
	case k.ID != "":
		return c.ID == k.ID
	case k.TaxID != "":
		return c.TaxID != nil && *c.TaxID == k.TaxID
	case k.Email != "":
		return c.Email != nil && *c.Email == k.Email
	default:
		return false
	}
}

// String renders the populated field used for resolution.
func (k LookupKey) String() string {
	switch {
	case k.ID != "":
		return k.ID
	case k.TaxID != "":
		return "tax_id=" + k.TaxID
	case k.Email != "":
		return "email=" + k.Email
	default:
		return ""
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
