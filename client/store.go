package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"biolink_back/siteconfig"
)

// ErrPasswordRequired is returned by Save when no password has been
// entered. No network call is made in that case.
var ErrPasswordRequired = errors.New("client: password is required")

// API is the slice of the backend the store needs. *APIClient satisfies
// it; tests substitute fakes.
type API interface {
	FetchConfig(ctx context.Context) (json.RawMessage, error)
	SaveConfig(ctx context.Context, password string, cfg siteconfig.SiteConfig) error
}

// Store holds the two parallel copies of the configuration: the committed
// config, which is what the rendering surface observes, and the draft the
// settings panel edits. The committed copy changes only on a successful
// save, on initialize, or on reset, so the page never renders a
// half-edited state.
type Store struct {
	api   API
	local *LocalData

	mu            sync.Mutex
	committed     siteconfig.SiteConfig
	draft         siteconfig.SiteConfig
	settingsOpen  bool
	loading       bool
	authenticated bool
	password      string
}

// NewStore builds a store with both copies at the default configuration.
func NewStore(api API, local *LocalData) *Store {
	defaults := siteconfig.DefaultConfig()
	return &Store{
		api:       api,
		local:     local,
		committed: defaults,
		draft:     defaults,
	}
}

// Initialize loads the persisted configuration. Server data merged over
// defaults wins; fields the server has empty are backfilled from the
// device-local blob cache; with no server data at all the cache alone is
// merged over defaults. This never surfaces an error — the worst case is
// silently running on defaults.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	raw, err := s.api.FetchConfig(ctx)
	if err != nil {
		log.Printf("client: load config failed, using local data: %v", err)
	}

	blobs := s.local.LoadBlobs()

	var cfg siteconfig.SiteConfig
	if err == nil && raw != nil {
		cfg = siteconfig.MergeOverDefaults(raw)
		cfg = overlayMissingBlobs(cfg, blobs)
	} else {
		cfg = siteconfig.DefaultConfig()
		if len(blobs) > 0 {
			cfg = applyBlobs(cfg, blobs)
		}
	}

	s.mu.Lock()
	s.committed = cfg
	s.draft = cfg
	s.loading = false
	s.mu.Unlock()
}

// OpenSettings copies committed into draft and opens the panel. Opening an
// already-open panel leaves the draft alone so a duplicate open cannot
// discard in-progress edits.
func (s *Store) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settingsOpen {
		return
	}
	s.draft = s.committed
	s.settingsOpen = true
}

// CloseSettings closes the panel. The draft is intentionally kept; the
// discard point is the copy on the next open.
func (s *Store) CloseSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsOpen = false
}

// UpdateDraft shallow-merges the given partial fields into the draft. No
// validation happens here; field-level checks belong to the panel.
func (s *Store) UpdateDraft(patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = siteconfig.ApplyPatch(s.draft, patch)
}

// SetPassword stores the admin password for the next save.
func (s *Store) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

// Save persists the draft. With an empty password it fails locally without
// touching the network. The inline-encoded media fields are mirrored into
// the device cache first (best-effort), then the draft is submitted; only
// a successful write promotes the draft snapshot to committed.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.password == "" {
		s.mu.Unlock()
		return ErrPasswordRequired
	}
	snapshot := s.draft
	password := s.password
	s.loading = true
	s.mu.Unlock()

	s.local.SaveBlobs(snapshot)

	err := s.api.SaveConfig(ctx, password, snapshot)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.committed = snapshot
		s.authenticated = true
	}
	s.mu.Unlock()

	return err
}

// Reset restores both copies to the default configuration. Local only; the
// stored server document is untouched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defaults := siteconfig.DefaultConfig()
	s.committed = defaults
	s.draft = defaults
}

// Committed returns the rendering copy.
func (s *Store) Committed() siteconfig.SiteConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Draft returns the editing copy.
func (s *Store) Draft() siteconfig.SiteConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SettingsOpen reports whether the panel is open.
func (s *Store) SettingsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsOpen
}

// Loading reports whether an initialize or save is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Authenticated reports whether a save has succeeded with the current
// password.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// overlayMissingBlobs backfills cached blob fields only where the server
// copy is empty. Server data takes precedence for any field it has.
func overlayMissingBlobs(cfg siteconfig.SiteConfig, blobs map[string]string) siteconfig.SiteConfig {
	if len(blobs) == 0 {
		return cfg
	}
	present := blobValues(cfg)
	patch := make(map[string]any)
	for field, value := range blobs {
		if value == "" {
			continue
		}
		if _, ok := present[field]; !ok {
			patch[field] = value
		}
	}
	return siteconfig.ApplyPatch(cfg, patch)
}

// applyBlobs merges every cached blob field, used when the server has no
// document at all.
func applyBlobs(cfg siteconfig.SiteConfig, blobs map[string]string) siteconfig.SiteConfig {
	patch := make(map[string]any, len(blobs))
	for field, value := range blobs {
		if value != "" {
			patch[field] = value
		}
	}
	return siteconfig.ApplyPatch(cfg, patch)
}
