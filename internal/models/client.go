// Package models defines the data structures of the client directory:
// the persistent entities and the DTOs carrying optional fields for
// creates, sparse updates and searches.
package models

// Client is a directory entry identified by an engine-assigned surrogate key.
// Email is nil when the client has none; a non-nil email is unique across
// the whole client set.
type Client struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
}

// Phone is a single phone number owned by a client. Numbers carry no
// uniqueness constraint; duplicates within or across clients are allowed.
type Phone struct {
	ID       int64
	ClientID int64
	Number   string
}

// ClientRecord is a search result row: the client fields plus its aggregated
// phone list. Phones is never nil; a client without phones yields an empty
// slice.
type ClientRecord struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
	Phones    []string
}

// NewClient carries the caller-supplied fields for create and upsert
// operations. First and last name are required and must be non-empty.
type NewClient struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     *string
	Phones    []string
}

// ClientUpdate describes a sparse update: nil fields are left unchanged.
// A non-nil Phones, including an empty list, replaces the whole phone set.
type ClientUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phones    *[]string
}

// IsZero reports whether the update carries no fields at all.
func (u ClientUpdate) IsZero() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phones == nil
}

// SearchFilter holds the optional search predicates, combined with AND.
// Phone is exclusive: when set, it is used as the sole filter and the other
// three are ignored.
type SearchFilter struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}
