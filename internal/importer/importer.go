// Package importer is the reconciliation engine: it decides which local
// accounts should exist for a set of authorized remote groups, with what
// attributes, and which should be deactivated.
//
// One run walks fixed phases: collect candidates across paginated group
// membership, normalize/filter profile fields, resolve each candidate to a
// local identity, create or update, link managers in two passes, then sweep
// active flags. Remote-data problems degrade to skips or empty results;
// local store failures abort the run.
package importer

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/logging"
	"github.com/itsmng/oktasync/internal/okta"
	"github.com/itsmng/oktasync/internal/provision"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

// DirectoryAPI is the slice of the IdP directory the engine consumes.
// *okta.Directory implements it.
type DirectoryAPI interface {
	Groups(ctx context.Context) map[string]string
	GroupsByPattern(ctx context.Context, pattern string) (map[string]string, error)
	UsersInGroup(ctx context.Context, groupID string) []okta.RemoteUser
	UserByID(ctx context.Context, userID string) (*okta.RemoteUser, error)
}

// Importer reconciles remote identities against the local user store.
type Importer struct {
	dir  DirectoryAPI
	repo users.Repository
	prov provision.Provisioner
	cfg  Config
	log  logging.Logger
}

// New builds an Importer. The configuration is captured by value: nothing
// read after this point can change the run's behavior.
func New(dir DirectoryAPI, repo users.Repository, prov provision.Provisioner, cfg Config, log logging.Logger) *Importer {
	return &Importer{dir: dir, repo: repo, prov: prov, cfg: cfg, log: log}
}

// run carries the state of a single import: the pending manager table and
// the listed set live exactly as long as the run.
type run struct {
	*Importer
	fullImport bool

	pendingManagers map[int64]string
	listedSet       map[int64]struct{}
	listed          []int64
	imported        []ImportedUser
}

func (imp *Importer) newRun(fullImport bool) *run {
	return &run{
		Importer:        imp,
		fullImport:      fullImport,
		pendingManagers: map[int64]string{},
		listedSet:       map[int64]struct{}{},
	}
}

// ImportGroups reconciles every member of the authorized groups. Store
// failures abort with an error; everything remote degrades to skips.
func (imp *Importer) ImportGroups(ctx context.Context, authorized map[string]string, fullImport bool) (*Result, error) {
	r := imp.newRun(fullImport)

	candidates := r.collect(ctx, authorized)
	imp.log.Info(ctx, "candidates collected", "groups", len(authorized), "candidates", len(candidates))

	for _, cand := range candidates {
		if err := r.processCandidate(ctx, cand); err != nil {
			return nil, err
		}
	}
	if err := r.resolvePendingManagers(ctx); err != nil {
		return nil, err
	}
	if imp.cfg.DeactivateUnlisted {
		if err := r.deactivateUnlisted(ctx); err != nil {
			return nil, err
		}
	}

	res := r.result()
	imp.log.Info(ctx, "import finished", "listed", len(res.Listed), "imported", len(res.Imported))
	return res, nil
}

// ImportOne refreshes a single remote user, bypassing group collection.
// The authorized set only contributes group labels. An unreachable or
// unknown remote user yields an empty result, not an error.
func (imp *Importer) ImportOne(ctx context.Context, userID string, authorized map[string]string, fullImport bool) (*Result, error) {
	r := imp.newRun(fullImport)

	u, err := imp.dir.UserByID(ctx, userID)
	if err != nil {
		imp.log.Warn(ctx, "remote user unavailable", "user", userID, "error", err)
		return r.result(), nil
	}

	cand := newCandidate(*u, sortedLabels(authorized)...)
	if err := r.processCandidate(ctx, cand); err != nil {
		return nil, err
	}
	if err := r.resolvePendingManagers(ctx); err != nil {
		return nil, err
	}
	return r.result(), nil
}

// processCandidate runs phases B-E for one candidate. A rejected candidate
// is silently excluded; only local store failures surface as errors.
func (r *run) processCandidate(ctx context.Context, cand *Candidate) error {
	if !r.transform(cand) {
		if r.cfg.ListRejected {
			return r.listExistingFor(ctx, cand)
		}
		return nil
	}

	keyColumn, keyValue, ok := r.duplicateValue(cand)
	if !ok {
		// cannot place a candidate missing its identity field
		return nil
	}

	existingID, err := r.findExisting(ctx, cand, keyColumn, keyValue)
	if err != nil {
		return err
	}

	created := false
	if existingID == 0 {
		id, err := r.prov.CreateAccount(ctx, provision.NewAccount{
			Login: cand.Profile["login"],
			Email: cand.Profile["email"],
		})
		if err != nil {
			r.log.Warn(ctx, "provisioning refused candidate", "remote_id", cand.ID, "error", err)
			return nil
		}
		existingID = id
		created = true
	}

	if created || r.fullImport {
		if err := r.repo.UpdateProfile(ctx, existingID, r.profileFields(cand)); err != nil {
			return err
		}
		r.imported = append(r.imported, ImportedUser{
			ID:    existingID,
			Login: cand.Profile["login"],
			Email: cand.Profile["email"],
		})
	}

	r.addListed(existingID)
	return r.linkManager(ctx, existingID, cand.Manager)
}

// transform applies the per-field normalize-then-filter rules in the fixed
// field order. Reports whether the candidate survives.
func (r *run) transform(cand *Candidate) bool {
	for _, spec := range fieldTable {
		rule, ok := r.cfg.Rules[spec.field]
		if !ok {
			continue
		}
		value := cand.Profile[spec.remote]

		if rule.Normalize != nil {
			value = rule.Normalize.ReplaceAllString(value, "")
			if value == "" {
				return false
			}
			cand.Profile[spec.remote] = value
		}
		if rule.Filter != nil && !rule.Filter.MatchString(value) {
			return false
		}
	}
	return true
}

// duplicateValue maps the configured duplicate key to its remote field and
// returns the local lookup column plus the candidate's value for it.
func (r *run) duplicateValue(cand *Candidate) (column, value string, ok bool) {
	spec, ok := specFor(r.cfg.DuplicateKey)
	if !ok {
		return "", "", false
	}
	value, ok = cand.Profile[spec.remote]
	if !ok || value == "" {
		return "", "", false
	}
	return spec.local, value, true
}

// findExisting resolves a candidate to a local account: duplicate-key
// lookup first, exact-login fallback second, both restricted to
// externally/LDAP-managed accounts. Zero means "no local record".
func (r *run) findExisting(ctx context.Context, cand *Candidate, column, value string) (int64, error) {
	id, err := r.repo.FindIDByAttribute(ctx, column, value)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return 0, err
	}

	login := cand.Profile["login"]
	if login == "" {
		return 0, nil
	}
	id, err = r.repo.FindIDByLogin(ctx, login)
	if errors.Is(err, common.ErrorNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// listExistingFor places a rejected candidate into the listed set when a
// matching local account exists, so the sweep leaves it alone.
func (r *run) listExistingFor(ctx context.Context, cand *Candidate) error {
	column, value, ok := r.duplicateValue(cand)
	if !ok {
		return nil
	}
	id, err := r.findExisting(ctx, cand, column, value)
	if err != nil {
		return err
	}
	if id != 0 {
		r.addListed(id)
	}
	return nil
}

// profileFields builds the outgoing column => value write for a candidate.
// Group labels are attached only when a groups column is configured.
func (r *run) profileFields(cand *Candidate) map[string]string {
	fields := map[string]string{}
	for _, spec := range fieldTable {
		if spec.local == "" {
			continue
		}
		if value, ok := cand.Profile[spec.remote]; ok {
			fields[spec.local] = value
		}
	}
	if r.cfg.GroupsColumn != "" && len(cand.Groups) > 0 {
		fields[r.cfg.GroupsColumn] = strings.Join(cand.Groups, ", ")
	}
	return fields
}

func (r *run) addListed(userID int64) {
	if _, ok := r.listedSet[userID]; ok {
		return
	}
	r.listedSet[userID] = struct{}{}
	r.listed = append(r.listed, userID)
}

// linkManager attempts first-pass manager resolution. An unresolvable
// manager is parked for the second pass and never fails the user's own
// creation or update.
func (r *run) linkManager(ctx context.Context, userID int64, mgr *okta.ManagerRef) error {
	if mgr == nil || mgr.Email == "" {
		return nil
	}
	managerID, err := r.repo.FindIDByEmail(ctx, mgr.Email)
	if errors.Is(err, common.ErrorNotFound) {
		r.pendingManagers[userID] = mgr.Email
		return nil
	}
	if err != nil {
		return err
	}
	return r.repo.UpdateSupervisor(ctx, userID, managerID)
}

// resolvePendingManagers is the one-shot second pass over deferred
// supervisor links, run after every candidate has been processed. A manager
// still missing afterwards is a warning; the user stays fully provisioned.
func (r *run) resolvePendingManagers(ctx context.Context) error {
	userIDs := make([]int64, 0, len(r.pendingManagers))
	for id := range r.pendingManagers {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	for _, userID := range userIDs {
		email := r.pendingManagers[userID]
		managerID, err := r.repo.FindIDByEmail(ctx, email)
		if errors.Is(err, common.ErrorNotFound) {
			r.log.Warn(ctx, "manager unresolved after second pass",
				"user_id", userID, "manager_email", email)
			continue
		}
		if err != nil {
			return err
		}
		if err := r.repo.UpdateSupervisor(ctx, userID, managerID); err != nil {
			return err
		}
	}

	r.pendingManagers = map[int64]string{}
	return nil
}

// deactivateUnlisted sweeps every externally-managed account: unlisted and
// active gets deactivated, listed and inactive gets reactivated, everything
// already in its target state is left untouched.
func (r *run) deactivateUnlisted(ctx context.Context) error {
	accounts, err := r.repo.ListManaged(ctx, r.cfg.IncludeLDAP)
	if err != nil {
		return err
	}

	for _, a := range accounts {
		_, listed := r.listedSet[a.ID]
		switch {
		case !listed && a.Active:
			err = r.repo.SetActive(ctx, a.ID, false)
		case listed && !a.Active:
			err = r.repo.SetActive(ctx, a.ID, true)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) result() *Result {
	return &Result{Listed: r.listed, Imported: r.imported}
}
