package directory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"linkhub/internal/app/storage"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/logx"
)

// Directory owns all user profiles. Reads are served from an immutable snapshot; writes are
// serialized and only published after the store accepted the new document.
type Directory struct {
	store storage.BlobStore

	// mu serializes Update calls, so read-modify-persist runs as one unit.
	mu sync.Mutex

	current atomic.Pointer[state]

	now func() time.Time

	logger zerolog.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// New creates an empty Directory persisted to store. Call Load to read existing data.
func New(store storage.BlobStore, opts ...Option) *Directory {
	d := &Directory{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logx.Component("Directory"),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.current.Store(newState())

	return d
}

// Load replaces the in-memory directory with the stored document. A missing document
// yields an empty directory.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.store.Load(ctx)
	if errors.Is(err, storage.ErrBlobNotFound) {
		d.logger.Info().Str("store", d.store.Name()).Msg("No stored directory found. Starting empty.")
		d.current.Store(newState())
		return nil
	}
	if err != nil {
		return err
	}

	st, err := decodeState(data, d.now())
	if err != nil {
		return err
	}

	d.current.Store(st)
	d.logger.Info().
		Str("store", d.store.Name()).
		Int("users", len(st.byID)).
		Msg("Directory loaded.")

	return nil
}

// Update runs fn against a private copy of the directory. If fn succeeds and changed
// anything, the copy is persisted and then published. On any failure the published
// directory is left untouched.
func (d *Directory) Update(ctx context.Context, fn func(tx *Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx := &Tx{st: d.current.Load().clone(), now: d.now()}

	if err := fn(tx); err != nil {
		return err
	}

	if !tx.dirty {
		return nil
	}

	data, err := tx.st.encode()
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to encode directory. Changes discarded.")
		return errs.Wrap(errs.ErrStorageWriteFailure, err)
	}

	if err := d.store.Save(ctx, data); err != nil {
		d.logger.Error().
			Err(err).
			Str("store", d.store.Name()).
			Msg("Failed to persist directory. Changes rolled back.")
		return errs.Wrap(errs.ErrStorageWriteFailure, err)
	}

	d.current.Store(tx.st)
	return nil
}

// Register creates a profile for username.
func (d *Directory) Register(ctx context.Context, username, password string) (Profile, error) {
	var profile Profile

	err := d.Update(ctx, func(tx *Tx) error {
		rec, err := tx.Create(username, password)
		if err != nil {
			return err
		}
		profile = tx.Profile(rec)
		return nil
	})

	return profile, err
}

// Authenticate checks username and password. Passwords are compared as plain strings.
func (d *Directory) Authenticate(username, password string) (Profile, error) {
	st := d.current.Load()

	rec, ok := st.lookup(username)
	if !ok || rec.Password != password {
		return Profile{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	return st.profile(rec), nil
}

// Rename changes oldName to newName. Relationships follow automatically since they
// reference user IDs.
func (d *Directory) Rename(ctx context.Context, oldName, newName string) (Profile, error) {
	return d.mutate(ctx, oldName, func(tx *Tx, rec *Record) error {
		return tx.Rename(rec, newName)
	})
}

// SetPassword replaces the password of username.
func (d *Directory) SetPassword(ctx context.Context, username, password string) (Profile, error) {
	return d.mutate(ctx, username, func(tx *Tx, rec *Record) error {
		tx.SetPassword(rec, password)
		return nil
	})
}

// SetColor replaces the accent color of username.
func (d *Directory) SetColor(ctx context.Context, username, color string) (Profile, error) {
	return d.mutate(ctx, username, func(tx *Tx, rec *Record) error {
		tx.SetColor(rec, color)
		return nil
	})
}

// SetPhoto replaces the photo of username. A nil photo clears it.
func (d *Directory) SetPhoto(ctx context.Context, username string, photo *string) (Profile, error) {
	return d.mutate(ctx, username, func(tx *Tx, rec *Record) error {
		tx.SetPhoto(rec, photo)
		return nil
	})
}

func (d *Directory) mutate(ctx context.Context, username string, fn func(tx *Tx, rec *Record) error) (Profile, error) {
	var profile Profile

	err := d.Update(ctx, func(tx *Tx) error {
		rec, ok := tx.Lookup(username)
		if !ok {
			return errs.NewError(errs.ErrUserNotFound)
		}
		if err := fn(tx, rec); err != nil {
			return err
		}
		profile = tx.Profile(rec)
		return nil
	})

	return profile, err
}

// Exists reports whether username is registered.
func (d *Directory) Exists(username string) bool {
	_, ok := d.current.Load().byName[username]
	return ok
}

// Get returns the profile for username.
func (d *Directory) Get(username string) (Profile, bool) {
	st := d.current.Load()

	rec, ok := st.lookup(username)
	if !ok {
		return Profile{}, false
	}

	return st.profile(rec), true
}

// GetByID returns the profile for a user ID.
func (d *Directory) GetByID(id string) (Profile, bool) {
	st := d.current.Load()

	rec, ok := st.byID[id]
	if !ok {
		return Profile{}, false
	}

	return st.profile(rec), true
}

// IDOf returns the user ID currently bound to username.
func (d *Directory) IDOf(username string) (string, bool) {
	id, ok := d.current.Load().byName[username]
	return id, ok
}

// Username returns the current username of a user ID.
func (d *Directory) Username(id string) (string, bool) {
	rec, ok := d.current.Load().byID[id]
	if !ok {
		return "", false
	}
	return rec.Username, true
}

// Public returns the display attributes of a user ID.
func (d *Directory) Public(id string) (PublicProfile, bool) {
	rec, ok := d.current.Load().byID[id]
	if !ok {
		return PublicProfile{}, false
	}

	p := PublicProfile{Username: rec.Username, Color: rec.Color}
	if rec.Photo != nil {
		photo := *rec.Photo
		p.Photo = &photo
	}
	return p, true
}

// Usernames lists every registered username in sorted order.
func (d *Directory) Usernames() []string {
	st := d.current.Load()

	names := make([]string, 0, len(st.byName))
	for name := range st.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	return len(d.current.Load().byID)
}
