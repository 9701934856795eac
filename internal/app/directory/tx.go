package directory

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/randx"
)

// Tx is a private, mutable copy of the directory handed to Directory.Update.
// Changes become visible only if the whole copy is persisted successfully.
type Tx struct {
	st    *state
	now   time.Time
	dirty bool
}

// Lookup returns the record for username. The record must only be changed through Tx methods.
func (tx *Tx) Lookup(username string) (*Record, bool) {
	return tx.st.lookup(username)
}

// ByID returns the record for a user ID.
func (tx *Tx) ByID(id string) (*Record, bool) {
	rec, ok := tx.st.byID[id]
	return rec, ok
}

// Profile builds the client view of rec as of this transaction.
func (tx *Tx) Profile(rec *Record) Profile {
	return tx.st.profile(rec)
}

// Create inserts a new profile with default attributes.
func (tx *Tx) Create(username, password string) (*Record, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if _, taken := tx.st.byName[username]; taken {
		return nil, errs.NewError(errs.ErrDuplicateUser)
	}

	rec := &Record{
		ID:        randx.UserID(),
		Username:  username,
		Password:  password,
		Color:     DefaultColor,
		Friends:   []string{},
		Requests:  []string{},
		CreatedAt: tx.now,
	}

	tx.st.byID[rec.ID] = rec
	tx.st.byName[username] = rec.ID
	tx.dirty = true

	return rec, nil
}

// Rename moves rec to newName. A profile can be renamed only once.
func (tx *Tx) Rename(rec *Record, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if rec.EditedName {
		return errs.NewError(errs.ErrNameAlreadyEdited)
	}

	if _, taken := tx.st.byName[newName]; taken {
		return errs.NewError(errs.ErrNameTaken)
	}

	delete(tx.st.byName, rec.Username)
	rec.Username = newName
	rec.EditedName = true
	tx.st.byName[newName] = rec.ID
	tx.dirty = true

	return nil
}

// SetPassword replaces the stored password.
func (tx *Tx) SetPassword(rec *Record, password string) {
	rec.Password = password
	tx.dirty = true
}

// SetColor replaces the accent color.
func (tx *Tx) SetColor(rec *Record, color string) {
	rec.Color = color
	tx.dirty = true
}

// SetPhoto replaces the photo; nil clears it.
func (tx *Tx) SetPhoto(rec *Record, photo *string) {
	rec.Photo = photo
	tx.dirty = true
}

// IsFriend reports whether other is in rec's friends.
func (tx *Tx) IsFriend(rec *Record, otherID string) bool {
	return lo.Contains(rec.Friends, otherID)
}

// HasRequest reports whether fromID has a pending request in rec.
func (tx *Tx) HasRequest(rec *Record, fromID string) bool {
	return lo.Contains(rec.Requests, fromID)
}

// AddRequest records a pending request from fromID on rec. It reports false without
// changing anything for self requests, existing friends and duplicates.
func (tx *Tx) AddRequest(rec *Record, fromID string) bool {
	if rec.ID == fromID || tx.IsFriend(rec, fromID) || tx.HasRequest(rec, fromID) {
		return false
	}

	rec.Requests = append(rec.Requests, fromID)
	tx.dirty = true
	return true
}

// RemoveRequest drops a pending request from fromID. It reports whether one existed.
func (tx *Tx) RemoveRequest(rec *Record, fromID string) bool {
	if !tx.HasRequest(rec, fromID) {
		return false
	}

	rec.Requests = without(rec.Requests, fromID)
	tx.dirty = true
	return true
}

// Befriend makes a and b friends of each other and clears any pending requests between them.
func (tx *Tx) Befriend(a, b *Record) {
	if a.ID == b.ID {
		return
	}

	a.Friends = appendUnique(a.Friends, b.ID)
	b.Friends = appendUnique(b.Friends, a.ID)
	a.Requests = without(a.Requests, b.ID)
	b.Requests = without(b.Requests, a.ID)
	tx.dirty = true
}

func appendUnique(list []string, id string) []string {
	if lo.Contains(list, id) {
		return list
	}
	return append(list, id)
}

func without(list []string, ids ...string) []string {
	return lo.Without(list, ids...)
}
