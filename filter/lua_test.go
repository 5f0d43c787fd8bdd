package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPolicy(t *testing.T) {
	source := strings.NewReader(`
		function exclude(schema, table)
			return schema == "neon_auth" or table == "_prisma_migrations"
		end
	`)

	log := zap.NewExample()
	policy, err := NewPolicy(log, source, "test-policy")
	require.NoError(t, err)
	t.Cleanup(policy.Close)

	tests := []*struct {
		schema string
		table  string
		want   bool
	}{
		{"neon_auth", "users_sync", true},
		{"public", "_prisma_migrations", true},
		{"public", "orders", false},
	}
	for _, tt := range tests {
		got, err := policy.Exclude(tt.schema, tt.table)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s.%s", tt.schema, tt.table)
	}
}

func TestNewPolicyErrors(t *testing.T) {
	tests := []*struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "syntax error",
			source:  `function exclude(`,
			wantErr: "failed to compile",
		},
		{
			name:    "function missing",
			source:  `answer = 42`,
			wantErr: "must define a function",
		},
		{
			name:    "not a function",
			source:  `exclude = "yes"`,
			wantErr: "must define a function",
		},
		{
			name:    "error at load time",
			source:  `error("boom")`,
			wantErr: "load policy source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(zap.NewExample(), strings.NewReader(tt.source), tt.name)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPolicyCallError(t *testing.T) {
	r := require.New(t)
	source := strings.NewReader(`
		function exclude(schema, table)
			error("no decision for " .. schema)
		end
	`)
	policy, err := NewPolicy(zap.NewExample(), source, "broken")
	r.NoError(err)
	t.Cleanup(policy.Close)

	_, err = policy.Exclude("public", "orders")
	r.Error(err)
	r.Contains(err.Error(), "no decision for public")
}

func TestPolicyTruthyReturn(t *testing.T) {
	r := require.New(t)
	// anything except false/nil counts as exclusion, as in Lua conditionals
	source := strings.NewReader(`
		function exclude(schema, table)
			if table == "keep" then
				return nil
			end
			return "yes"
		end
	`)
	policy, err := NewPolicy(zap.NewExample(), source, "truthy")
	r.NoError(err)
	t.Cleanup(policy.Close)

	got, err := policy.Exclude("public", "anything")
	r.NoError(err)
	r.True(got)

	got, err = policy.Exclude("public", "keep")
	r.NoError(err)
	r.False(got)
}
