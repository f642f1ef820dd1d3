package unit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitType_Valid(t *testing.T) {
	require.True(t, TypeStandard.Valid())
	require.True(t, TypeMiniStandard.Valid())
	require.False(t, UnitType("template").Valid())
	require.False(t, UnitType("").Valid())
}

func TestStatus_Valid(t *testing.T) {
	require.True(t, StatusActive.Valid())
	require.True(t, StatusDeprecated.Valid())
	require.False(t, Status("draft").Valid())
	require.False(t, Status("Active").Valid())
}

func TestRegistry_IDsSorted(t *testing.T) {
	r := &Registry{Units: map[string]RegistryEntry{
		"standards/z": {Path: "specs/standards/z"},
		"meta/a":      {Path: "specs/meta/a"},
		"standards/b": {Path: "specs/standards/b"},
	}}

	require.Equal(t, []string{"meta/a", "standards/b", "standards/z"}, r.IDs())
	require.Equal(t, 3, r.Len())
	require.True(t, r.Has("meta/a"))
	require.False(t, r.Has("meta/b"))

	e, ok := r.Entry("standards/b")
	require.True(t, ok)
	require.Equal(t, "specs/standards/b", e.Path)
}

func TestValidationReport(t *testing.T) {
	var r ValidationReport
	require.True(t, r.Passed())

	r.Addf("%s: Invalid status: %s", "a", "draft")
	r.Extend("b: UNIT declaration missing")

	require.False(t, r.Passed())
	require.Equal(t, 2, r.Len())
	msgs := r.Messages()
	require.Equal(t, []string{"a: Invalid status: draft", "b: UNIT declaration missing"}, msgs)

	msgs[0] = "changed"
	require.Equal(t, "a: Invalid status: draft", r.Messages()[0])
}
