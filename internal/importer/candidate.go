package importer

import (
	"context"
	"sort"

	"github.com/itsmng/oktasync/internal/okta"
)

// Candidate is one remote user merged across every authorized group it
// belongs to, pending local placement. Its remote id is unique within a
// collection pass.
type Candidate struct {
	ID      string
	Profile map[string]string
	Groups  []string
	Manager *okta.ManagerRef
}

func newCandidate(u okta.RemoteUser, groups ...string) *Candidate {
	profile := make(map[string]string, len(u.Profile))
	for k, v := range u.Profile {
		profile[k] = v
	}
	return &Candidate{ID: u.ID, Profile: profile, Groups: groups, Manager: u.Manager}
}

// collect fetches the membership of every authorized group and merges it
// into a candidate list keyed by remote user id: the first occurrence
// establishes the candidate, later occurrences only append their group
// label. First-seen order is preserved; groups are visited in id order so
// repeated runs see the same sequence.
func (imp *Importer) collect(ctx context.Context, authorized map[string]string) []*Candidate {
	groupIDs := make([]string, 0, len(authorized))
	for id := range authorized {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	var (
		candidates []*Candidate
		byID       = map[string]*Candidate{}
	)
	for _, groupID := range groupIDs {
		label := authorized[groupID]
		for _, u := range imp.dir.UsersInGroup(ctx, groupID) {
			if existing, ok := byID[u.ID]; ok {
				existing.Groups = append(existing.Groups, label)
				continue
			}
			cand := newCandidate(u, label)
			byID[u.ID] = cand
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// sortedLabels flattens an authorized group set into a stable label list
// for the single-user entry point, which skips collection.
func sortedLabels(authorized map[string]string) []string {
	labels := make([]string, 0, len(authorized))
	for _, label := range authorized {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
