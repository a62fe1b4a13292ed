package importer

import (
	"fmt"
	"regexp"

	"github.com/itsmng/oktasync/internal/common"
)

// FieldRule carries the optional per-field transformations, pre-compiled at
// configuration load so a malformed pattern is caught before a run starts.
type FieldRule struct {
	// Normalize strips every match from the value; an empty result rejects
	// the candidate.
	Normalize *regexp.Regexp
	// Filter must match the (possibly normalized) value or the candidate is
	// rejected. Applied after Normalize.
	Filter *regexp.Regexp
}

// Config holds the recognized import options, captured once before the first
// network call and passed by value into a run.
type Config struct {
	// DuplicateKey is the remote field used to find a pre-existing local
	// account. Must map to a local column.
	DuplicateKey Field

	GroupName     string
	GroupPattern  string
	UseGroupRegex bool

	// FullImport overwrites profile fields on existing accounts instead of
	// only creating newly-seen ones.
	FullImport bool

	DeactivateUnlisted bool
	IncludeLDAP        bool

	// ListRejected keeps accounts matching candidates rejected by
	// normalize/filter in the listed set, shielding them from the
	// deactivation sweep.
	ListRejected bool

	// GroupsColumn is the local column receiving the accumulated group
	// labels; empty means membership is tracked for deactivation only.
	GroupsColumn string

	Rules map[Field]FieldRule
}

func boolValue(values map[string]string, name string) bool {
	switch values[name] {
	case "1", "true", "on":
		return true
	}
	return false
}

// ParseConfig builds a validated Config from the flat settings table.
// Returns common.ErrorBadPattern for an uncompilable normalize/filter
// pattern and common.ErrorUnmappedKey for a duplicate key without a local
// column mapping.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := &Config{
		DuplicateKey:       Field(values["duplicate"]),
		GroupName:          values["group"],
		GroupPattern:       values["group_regex"],
		UseGroupRegex:      boolValue(values, "use_group_regex"),
		FullImport:         boolValue(values, "full_import"),
		DeactivateUnlisted: boolValue(values, "deactivate"),
		IncludeLDAP:        boolValue(values, "ldap_update"),
		ListRejected:       boolValue(values, "list_rejected"),
		GroupsColumn:       values["group_field"],
		Rules:              map[Field]FieldRule{},
	}

	if cfg.DuplicateKey == "" {
		cfg.DuplicateKey = FieldEmail
	}
	spec, ok := specFor(cfg.DuplicateKey)
	if !ok || spec.local == "" {
		return nil, fmt.Errorf("%w: %q", common.ErrorUnmappedKey, cfg.DuplicateKey)
	}

	for _, spec := range fieldTable {
		var rule FieldRule
		name := string(spec.field)

		if boolValue(values, "use_norm_"+name) {
			re, err := regexp.Compile(values["norm_"+name])
			if err != nil {
				return nil, fmt.Errorf("%w: norm_%s: %v", common.ErrorBadPattern, name, err)
			}
			rule.Normalize = re
		}
		if boolValue(values, "use_filter_"+name) {
			re, err := regexp.Compile(values["filter_"+name])
			if err != nil {
				return nil, fmt.Errorf("%w: filter_%s: %v", common.ErrorBadPattern, name, err)
			}
			rule.Filter = re
		}
		if rule.Normalize != nil || rule.Filter != nil {
			cfg.Rules[spec.field] = rule
		}
	}

	return cfg, nil
}

// EffectiveGroupPattern returns the pattern selecting authorized groups: the
// stored regex in regex mode, otherwise the exact group name anchored and
// quoted. Empty when no group is configured.
func (c *Config) EffectiveGroupPattern() string {
	if c.UseGroupRegex {
		return c.GroupPattern
	}
	if c.GroupName == "" {
		return ""
	}
	return "^" + regexp.QuoteMeta(c.GroupName) + "$"
}
