package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// RegistrationRecord is the persisted outcome of a registration.
type RegistrationRecord struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the record was last saved.
	SavedAt time.Time `json:"saved_at"`

	// RegistrationID is the device registration identifier.
	RegistrationID string `json:"registration_id"`

	// IDScope is the provisioning service scope.
	IDScope string `json:"id_scope,omitempty"`

	// ProvisioningHost is the endpoint the device registered with.
	ProvisioningHost string `json:"provisioning_host,omitempty"`

	// Result is the last registration result from the service.
	Result *provisioning.RegistrationResult `json:"result,omitempty"`

	// LastError is the message of the last failed registration, if any.
	LastError string `json:"last_error,omitempty"`
}

// Assigned reports whether the record holds an assigned registration.
func (r *RegistrationRecord) Assigned() bool {
	return r != nil && r.Result != nil && r.Result.Status.Canonical() == provisioning.StatusAssigned
}

// NewRecord builds a record from a request and the outcome of Register.
func NewRecord(req provisioning.RegistrationRequest, result *provisioning.RegistrationResult, err error) *RegistrationRecord {
	rec := &RegistrationRecord{
		RegistrationID:   req.RegistrationID,
		IDScope:          req.IDScope,
		ProvisioningHost: req.ProvisioningHost,
		Result:           result,
	}
	if err != nil {
		rec.LastError = err.Error()
	}
	return rec
}

// Store manages persistence of a registration record to a file.
type Store struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSealer seals the record at rest.
func WithSealer(s *Sealer) StoreOption {
	return func(st *Store) {
		st.sealer = s
	}
}

// NewStore creates a new registration state store.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists the record to disk.
func (s *Store) Save(rec *RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	rec.Version = StateVersion
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	perm := os.FileMode(0644)
	if s.sealer != nil {
		if data, err = s.sealer.Seal(data); err != nil {
			return err
		}
		perm = 0600
	}

	return os.WriteFile(s.path, data, perm)
}

// Load reads the record from disk.
// Returns nil, nil if the file doesn't exist.
func (s *Store) Load() (*RegistrationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if isSealed(data) {
		if s.sealer == nil {
			return nil, ErrSealed
		}
		if data, err = s.sealer.Open(data); err != nil {
			return nil, err
		}
	}

	rec := &RegistrationRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Clear removes the state file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
