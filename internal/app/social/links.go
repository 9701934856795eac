package social

import (
	"net/url"
	"strings"
	"sync"

	"github.com/samber/lo"

	"linkhub/internal/app/presence"
	"linkhub/internal/pkg/errs"
)

// DefaultMaxLinks is how many shared links the feed keeps.
const DefaultMaxLinks = 500

// LinkFeed is the in-memory list of shared links, oldest first, without duplicates.
type LinkFeed struct {
	mu    sync.RWMutex
	links []string
	max   int
}

// NewLinkFeed returns an empty feed holding at most limit links. A limit of zero means unbounded.
func NewLinkFeed(limit int) *LinkFeed {
	return &LinkFeed{max: limit}
}

// Add appends link unless it is already present. The oldest link is evicted when full.
func (f *LinkFeed) Add(link string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if lo.Contains(f.links, link) {
		return false
	}

	f.links = append(f.links, link)
	if f.max > 0 && len(f.links) > f.max {
		f.links = f.links[len(f.links)-f.max:]
	}

	return true
}

// Snapshot returns a copy of the feed.
func (f *LinkFeed) Snapshot() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string{}, f.links...)
}

// NormalizeLink trims raw and checks it is an absolute http(s) URL.
func NormalizeLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "", errs.NewError(errs.ErrLinkInvalid)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", errs.NewError(errs.ErrLinkInvalid)
	}

	return link, nil
}

// ShareLink adds link to the feed and broadcasts it to every other connected session.
func (s *Service) ShareLink(sess presence.Session, raw string) (Result, error) {
	link, err := NormalizeLink(raw)
	if err != nil {
		return Result{}, err
	}

	if !s.links.Add(link) {
		return Result{Reason: ReasonDuplicateLink}, nil
	}

	res := Result{Applied: true}
	if s.broadcaster != nil {
		reached := s.broadcaster.BroadcastExcept(sess, EventBroadcastLink, link)
		s.logger.Debug().Str("conn", sess.ConnID()).Int("reached", reached).Msg("Link shared.")
	}

	return res, nil
}

// Links returns the current feed.
func (s *Service) Links() []string {
	return s.links.Snapshot()
}
