package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmng/oktasync/internal/common"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, FieldEmail, cfg.DuplicateKey)
	assert.False(t, cfg.FullImport)
	assert.False(t, cfg.DeactivateUnlisted)
	assert.False(t, cfg.IncludeLDAP)
	assert.False(t, cfg.ListRejected)
	assert.Empty(t, cfg.Rules)
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{
		"full_import": "1",
		"deactivate":  "true",
		"ldap_update": "on",
		"duplicate":   "name",
		"group_field": "groups",
	})
	require.NoError(t, err)

	assert.Equal(t, FieldName, cfg.DuplicateKey)
	assert.True(t, cfg.FullImport)
	assert.True(t, cfg.DeactivateUnlisted)
	assert.True(t, cfg.IncludeLDAP)
	assert.Equal(t, "groups", cfg.GroupsColumn)
}

func TestParseConfigRejectsUnmappedDuplicateKey(t *testing.T) {
	// nickname exists remotely but has no local column
	_, err := ParseConfig(map[string]string{"duplicate": "nickname"})
	assert.ErrorIs(t, err, common.ErrorUnmappedKey)

	_, err = ParseConfig(map[string]string{"duplicate": "shoe_size"})
	assert.ErrorIs(t, err, common.ErrorUnmappedKey)
}

func TestParseConfigCompilesRules(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{
		"use_norm_email":    "1",
		"norm_email":        `@.*$`,
		"use_filter_name":   "1",
		"filter_name":       `^[a-z]+$`,
		"norm_phone_number": `\D`, // no use_ flag, must be ignored
	})
	require.NoError(t, err)

	require.Contains(t, cfg.Rules, FieldEmail)
	assert.NotNil(t, cfg.Rules[FieldEmail].Normalize)
	assert.Nil(t, cfg.Rules[FieldEmail].Filter)

	require.Contains(t, cfg.Rules, FieldName)
	assert.NotNil(t, cfg.Rules[FieldName].Filter)

	assert.NotContains(t, cfg.Rules, FieldPhone)
}

func TestParseConfigBadPattern(t *testing.T) {
	_, err := ParseConfig(map[string]string{
		"use_filter_email": "1",
		"filter_email":     `[`,
	})
	assert.ErrorIs(t, err, common.ErrorBadPattern)

	_, err = ParseConfig(map[string]string{
		"use_norm_name": "1",
		"norm_name":     `(`,
	})
	assert.ErrorIs(t, err, common.ErrorBadPattern)
}

func TestEffectiveGroupPattern(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"regex mode passes pattern through", Config{UseGroupRegex: true, GroupPattern: `^Eng.*`}, `^Eng.*`},
		{"name mode anchors and quotes", Config{GroupName: "C++ Devs"}, `^C\+\+ Devs$`},
		{"nothing configured", Config{}, ""},
		{"regex mode ignores plain name", Config{UseGroupRegex: true, GroupName: "Eng"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveGroupPattern())
		})
	}
}
