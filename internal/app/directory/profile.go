/*
Package directory is the authoritative store of user profiles.

Profiles are keyed by a stable opaque user ID; the username is a secondary index that can be
renamed without touching any other record, because friends and pending requests reference
user IDs. Every mutation runs as a copy-on-write transaction that is persisted in full through
a storage.BlobStore before it becomes visible.
*/
package directory

import "time"

// DefaultColor is the accent color given to new profiles.
const DefaultColor = "#3498db"

// Record is the stored form of a user profile. Friends and Requests hold user IDs.
type Record struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Password   string    `json:"password"`
	Color      string    `json:"color"`
	Photo      *string   `json:"photo"`
	EditedName bool      `json:"editedName"`
	Friends    []string  `json:"friends"`
	Requests   []string  `json:"requests"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Record) clone() *Record {
	c := *r
	c.Friends = append([]string(nil), r.Friends...)
	c.Requests = append([]string(nil), r.Requests...)
	if r.Photo != nil {
		photo := *r.Photo
		c.Photo = &photo
	}
	return &c
}

// Profile is the view of a user sent to clients. Friends and Requests are resolved to the
// current usernames, so renames are reflected everywhere immediately.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Color      string    `json:"color"`
	Photo      *string   `json:"photo"`
	EditedName bool      `json:"editedName"`
	Friends    []string  `json:"friends"`
	Requests   []string  `json:"requests"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublicProfile holds the display attributes other users may see.
type PublicProfile struct {
	Username string  `json:"username"`
	Color    string  `json:"color"`
	Photo    *string `json:"photo"`
}
