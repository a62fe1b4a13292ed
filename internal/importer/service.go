package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/cryptox"
	"github.com/itsmng/oktasync/internal/logging"
	"github.com/itsmng/oktasync/internal/okta"
	"github.com/itsmng/oktasync/internal/provision"
	"github.com/itsmng/oktasync/internal/repositories/settings"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

// Service owns the run lifecycle: it loads stored configuration, constructs
// the IdP client (decrypting the API key at that point and nowhere else),
// and serializes overlapping runs. The mutex keeps a scheduled run from
// racing a manual one within the same process.
type Service struct {
	mu         sync.Mutex
	settings   settings.Repository
	repo       users.Repository
	prov       provision.Provisioner
	log        logging.Logger
	passphrase string
	timeout    time.Duration

	// dial builds the directory for an endpoint; swapped out in tests.
	dial func(baseURL, apiKey string) DirectoryAPI
}

func NewService(store settings.Repository, repo users.Repository, prov provision.Provisioner, log logging.Logger, passphrase string, timeout time.Duration) *Service {
	s := &Service{
		settings:   store,
		repo:       repo,
		prov:       prov,
		log:        log,
		passphrase: passphrase,
		timeout:    timeout,
	}
	s.dial = func(baseURL, apiKey string) DirectoryAPI {
		client := okta.NewClient(baseURL, apiKey)
		if s.timeout > 0 {
			client.SetTimeout(s.timeout)
		}
		return okta.NewDirectory(client)
	}
	return s
}

// open captures the effective configuration and connects the directory.
// Every configuration value is read before the first network call.
func (s *Service) open(ctx context.Context) (DirectoryAPI, *Config, error) {
	values, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := ParseConfig(values)
	if err != nil {
		return nil, nil, err
	}

	endpoint, blob := values["url"], values["key"]
	if endpoint == "" || blob == "" {
		return nil, nil, common.ErrorNoCredential
	}
	apiKey, err := cryptox.DecryptSecret(blob, s.passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypting API key: %w", err)
	}

	return s.dial(endpoint, apiKey), cfg, nil
}

// RunScheduled is the scheduler entry point: no per-invocation parameters,
// stored configuration only, returns the imported count as run volume.
// A missing group selection or an empty match yields volume zero; a
// malformed group pattern is a real error, distinct from "matched nothing".
func (s *Service) RunScheduled(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With("run_id", uuid.NewString())

	dir, cfg, err := s.open(ctx)
	if err != nil {
		return 0, err
	}

	pattern := cfg.EffectiveGroupPattern()
	if pattern == "" {
		log.Info(ctx, "no group selection configured, nothing to import")
		return 0, nil
	}
	groups, err := dir.GroupsByPattern(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		log.Info(ctx, "group pattern matched nothing", "pattern", pattern)
		return 0, nil
	}

	res, err := New(dir, s.repo, s.prov, *cfg, log).ImportGroups(ctx, groups, cfg.FullImport)
	if err != nil {
		return 0, err
	}
	return len(res.Imported), nil
}

// ImportGroups is the manual entry point with an explicit authorized group
// set and full-import flag.
func (s *Service) ImportGroups(ctx context.Context, authorized map[string]string, fullImport bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With("run_id", uuid.NewString())
	dir, cfg, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	return New(dir, s.repo, s.prov, *cfg, log).ImportGroups(ctx, authorized, fullImport)
}

// ImportUser refreshes one remote user, bypassing group collection.
func (s *Service) ImportUser(ctx context.Context, userID string, authorized map[string]string, fullImport bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With("run_id", uuid.NewString())
	dir, cfg, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	return New(dir, s.repo, s.prov, *cfg, log).ImportOne(ctx, userID, authorized, fullImport)
}

// Groups lists remote groups, optionally filtered by pattern.
func (s *Service) Groups(ctx context.Context, pattern string) (map[string]string, error) {
	dir, _, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return dir.Groups(ctx), nil
	}
	return dir.GroupsByPattern(ctx, pattern)
}

// SaveSetting stores one configuration entry. The API key is the only
// value encrypted at rest.
func (s *Service) SaveSetting(ctx context.Context, name, value string) error {
	if name == "key" {
		blob, err := cryptox.EncryptSecret(value, s.passphrase)
		if err != nil {
			return err
		}
		value = blob
	}
	return s.settings.Set(ctx, name, value)
}
