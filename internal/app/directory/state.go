package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"linkhub/internal/pkg/randx"
)

// documentVersion is written into every persisted document. Documents without it are
// treated as the legacy username-keyed users.json format.
const documentVersion = 1

// document is the persisted layout: one JSON object rewritten in full on every mutation.
type document struct {
	Version int                `json:"version"`
	Users   map[string]*Record `json:"users"`
}

// state is an immutable-once-published snapshot of the directory.
type state struct {
	byID   map[string]*Record
	byName map[string]string
}

func newState() *state {
	return &state{
		byID:   make(map[string]*Record),
		byName: make(map[string]string),
	}
}

func (s *state) clone() *state {
	next := &state{
		byID:   make(map[string]*Record, len(s.byID)),
		byName: make(map[string]string, len(s.byName)),
	}
	for id, rec := range s.byID {
		next.byID[id] = rec.clone()
	}
	for name, id := range s.byName {
		next.byName[name] = id
	}
	return next
}

func (s *state) lookup(username string) (*Record, bool) {
	id, ok := s.byName[username]
	if !ok {
		return nil, false
	}
	rec, ok := s.byID[id]
	return rec, ok
}

// usernames resolves ids to usernames, skipping ids that no longer exist.
func (s *state) usernames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.byID[id]; ok {
			names = append(names, rec.Username)
		}
	}
	return names
}

func (s *state) profile(rec *Record) Profile {
	p := Profile{
		ID:         rec.ID,
		Username:   rec.Username,
		Color:      rec.Color,
		EditedName: rec.EditedName,
		Friends:    s.usernames(rec.Friends),
		Requests:   s.usernames(rec.Requests),
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Photo != nil {
		photo := *rec.Photo
		p.Photo = &photo
	}
	return p
}

func (s *state) encode() ([]byte, error) {
	return json.MarshalIndent(document{Version: documentVersion, Users: s.byID}, "", "  ")
}

func decodeState(data []byte, now time.Time) (*state, error) {
	// Legacy files are keyed by username, so "version" and "users" may be account names there.
	// Only a numeric version next to a users field marks a versioned document.
	var probe struct {
		Version json.RawMessage `json:"version"`
		Users   json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("directory document is not valid JSON: %w", err)
	}

	if !isJSONNumber(probe.Version) || len(probe.Users) == 0 {
		return decodeLegacy(data, now)
	}

	var version int
	if err := json.Unmarshal(probe.Version, &version); err != nil || version != documentVersion {
		return nil, fmt.Errorf("unsupported directory document version %s", probe.Version)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode directory document: %w", err)
	}

	st := newState()
	for id, rec := range doc.Users {
		if rec == nil || rec.ID != id {
			return nil, fmt.Errorf("directory record %q has a mismatched id", id)
		}
		if other, taken := st.byName[rec.Username]; taken {
			return nil, fmt.Errorf("username %q is used by both %s and %s", rec.Username, other, id)
		}
		st.byID[id] = rec
		st.byName[rec.Username] = id
	}

	return st, nil
}

// legacyRecord is one entry of the unversioned users.json, keyed by username, whose friends and
// requests are usernames.
type legacyRecord struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Password   string   `json:"password"`
	Color      string   `json:"color"`
	Photo      *string  `json:"photo"`
	EditedName bool     `json:"editedName"`
	Friends    []string `json:"friends"`
	Requests   []string `json:"requests"`
}

// decodeLegacy imports the username-keyed format, assigning stable IDs and translating
// relationship references. References to unknown or self usernames are dropped.
func decodeLegacy(data []byte, now time.Time) (*state, error) {
	var legacy map[string]*legacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode legacy directory: %w", err)
	}

	// Deterministic ID assignment order keeps imports reproducible in logs.
	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)

	st := newState()
	for _, name := range names {
		lr := legacy[name]
		if lr == nil || strings.TrimSpace(name) == "" {
			continue
		}

		id := lr.ID
		if id == "" || st.byID[id] != nil {
			id = randx.UserID()
		}

		color := lr.Color
		if color == "" {
			color = DefaultColor
		}

		st.byID[id] = &Record{
			ID:         id,
			Username:   name,
			Password:   lr.Password,
			Color:      color,
			Photo:      lr.Photo,
			EditedName: lr.EditedName,
			Friends:    []string{},
			Requests:   []string{},
			CreatedAt:  now,
		}
		st.byName[name] = id
	}

	for _, name := range names {
		lr := legacy[name]
		rec, ok := st.lookup(name)
		if lr == nil || !ok {
			continue
		}
		rec.Friends = legacyRefs(st, rec.ID, lr.Friends)
		rec.Requests = legacyRefs(st, rec.ID, lr.Requests)
	}

	// Restore friend symmetry and request/friend exclusivity, which the legacy format
	// never guaranteed.
	for _, rec := range st.byID {
		for _, friendID := range rec.Friends {
			friend := st.byID[friendID]
			friend.Friends = appendUnique(friend.Friends, rec.ID)
		}
	}
	for _, rec := range st.byID {
		rec.Requests = without(rec.Requests, rec.Friends...)
	}

	return st, nil
}

func isJSONNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'))
}

func legacyRefs(st *state, selfID string, names []string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		other, ok := st.lookup(name)
		if !ok || other.ID == selfID {
			continue
		}
		ids = appendUnique(ids, other.ID)
	}
	return ids
}
