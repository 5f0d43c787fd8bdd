package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Feresey/dumptrim/dump"
	"github.com/Feresey/dumptrim/filter"
)

var testDecisions = []filter.Decision{
	{Table: dump.Identifier{Schema: "public", Name: "orders"}, Rows: 3},
	{Table: dump.Identifier{Schema: "public", Name: "_prisma_migrations"}, Rows: 2, Excluded: true},
}

func TestConvertDecisions(t *testing.T) {
	var conv CSVConverter
	got := conv.ConvertDecisions(testDecisions)
	want := [][]string{
		{"table", "rows", "verdict"},
		{"public.orders", "3", "keep"},
		{"public._prisma_migrations", "2", "drop"},
	}
	require.Equal(t, want, got)
}

func TestRenderTable(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderTable(&sb, "backup.sql", testDecisions))

	want := "-- backup.sql: 2 data blocks\n" +
		"keep  public.orders" + strings.Repeat(" ", 19) + "3 rows\n" +
		"drop  public._prisma_migrations" + strings.Repeat(" ", 7) + "2 rows\n"
	require.Equal(t, want, sb.String())
}

func TestRenderTableEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderTable(&sb, "empty.sql", nil))
	require.Equal(t, "-- empty.sql: 0 data blocks\n", sb.String())
}
