package units

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/govkit/internal/domain/unit"
)

func TestValidate_AllValid(t *testing.T) {
	fsys := buildRepo(t,
		fixtureUnit{id: "standards/a", deps: []string{"standards/b"}},
		fixtureUnit{id: "standards/b", unitType: "mini-standard", status: "deprecated"},
	)

	res, err := mustService(t, fsys).Validate(context.Background(), Scope{})
	require.NoError(t, err)
	require.True(t, res.Passed())
	require.NoError(t, res.Err())
	require.Equal(t, 2, res.RegistryUnits)
	require.Equal(t, []string{"standards/a", "standards/b"}, res.Validated)
	require.Equal(t, []string{"standards/a", "standards/b"}, sortedKeys(res.Units))
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		units []fixtureUnit
		want  []string
	}{
		{
			name:  "unit_id mismatch names both ids",
			units: []fixtureUnit{{id: "D", declared: "E"}},
			want: []string{
				"D: unit_id mismatch (registry: D, file: E)",
				"E: unit_id not in registry",
			},
		},
		{
			name:  "mismatch to another registered unit",
			units: []fixtureUnit{{id: "D", declared: "E"}, {id: "E"}},
			want:  []string{"D: unit_id mismatch (registry: D, file: E)"},
		},
		{
			name:  "invalid unit_type is reported once",
			units: []fixtureUnit{{id: "F", unitType: "legacy"}, {id: "G"}},
			want:  []string{"F: Invalid unit_type: legacy"},
		},
		{
			name:  "invalid status",
			units: []fixtureUnit{{id: "H", status: "draft"}},
			want:  []string{"H: Invalid status: draft"},
		},
		{
			name:  "declaration missing",
			units: []fixtureUnit{{id: "I", noDecl: true}},
			want:  []string{"I: UNIT declaration missing"},
		},
		{
			name:  "path missing reports both passes",
			units: []fixtureUnit{{id: "J", noDir: true}},
			want: []string{
				"J: UNIT declaration missing",
				"J: Path does not exist: specs/J",
			},
		},
		{
			name:  "messages are collected in sorted registry order",
			units: []fixtureUnit{{id: "z", status: "x"}, {id: "a", unitType: "y", status: "x"}},
			want: []string{
				"a: Invalid unit_type: y",
				"a: Invalid status: x",
				"z: Invalid status: x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := mustService(t, buildRepo(t, tt.units...)).Validate(context.Background(), Scope{})
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Report.Messages())
			require.True(t, errors.Is(res.Err(), ErrValidationFailed))
		})
	}
}

func TestValidate_ParseFailureSkipsUnit(t *testing.T) {
	fsys := buildRepo(t, fixtureUnit{id: "K", raw: `{"unit_id": 7}`})

	res, err := mustService(t, fsys).Validate(context.Background(), Scope{})
	require.NoError(t, err)

	msgs := res.Report.Messages()
	require.Len(t, msgs, 1)
	require.True(t, strings.HasPrefix(msgs[0], "K: Failed to parse declaration: "), msgs[0])
	require.Empty(t, res.Units)
	require.Empty(t, res.Validated)
}

func TestValidate_WorkingSetKeyedByDeclaredID(t *testing.T) {
	fsys := buildRepo(t,
		fixtureUnit{id: "a", declared: "shared"},
		fixtureUnit{id: "b", declared: "shared", status: "deprecated"},
	)

	res, err := mustService(t, fsys).Validate(context.Background(), Scope{})
	require.NoError(t, err)
	require.Equal(t, []string{"shared"}, sortedKeys(res.Units))
	// last write wins in sorted order
	require.Equal(t, unit.StatusDeprecated, res.Units["shared"].Status)
}

func TestValidate_SingleUnitPath(t *testing.T) {
	fsys := buildRepo(t,
		fixtureUnit{id: "standards/a"},
		fixtureUnit{id: "standards/b", status: "draft"},
		fixtureUnit{id: "standards/c", noDir: true},
	)
	svc := mustService(t, fsys)

	res, err := svc.Validate(context.Background(), Scope{UnitPath: "specs/standards/a"})
	require.NoError(t, err)
	require.Equal(t, []string{"standards/a"}, res.Validated)
	// the path pass always covers the whole registry
	require.Equal(t, []string{"standards/c: Path does not exist: specs/standards/c"}, res.Report.Messages())

	res, err = svc.Validate(context.Background(), Scope{UnitPath: "specs/standards/b"})
	require.NoError(t, err)
	require.Contains(t, res.Report.Messages(), "standards/b: Invalid status: draft")
}

func TestValidate_SingleUnitPathErrors(t *testing.T) {
	fsys := buildRepo(t, fixtureUnit{id: "a", raw: "{"})
	svc := mustService(t, fsys)

	_, err := svc.Validate(context.Background(), Scope{UnitPath: "specs/nowhere"})
	require.True(t, errors.Is(err, ErrUnitPathNotFound))
	require.Contains(t, err.Error(), "specs/nowhere/UNIT.json")

	_, err = svc.Validate(context.Background(), Scope{UnitPath: "specs/a"})
	require.True(t, errors.Is(err, ErrDeclarationParse))
}

func TestValidate_RegistryErrorsAreFatal(t *testing.T) {
	_, err := mustService(t, fstest.MapFS{}).Validate(context.Background(), Scope{})
	require.True(t, errors.Is(err, ErrRegistryNotFound))
}

// Every injected defect produces its messages; none suppresses another.
func TestValidate_ReportsEveryDefect(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		var units []fixtureUnit
		want := 0
		for i := 0; i < n; i++ {
			u := fixtureUnit{id: fmt.Sprintf("u%02d", i)}
			switch rapid.IntRange(0, 4).Draw(rt, fmt.Sprintf("kind%d", i)) {
			case 1:
				u.raw = `{"unit_id": }`
				want++
			case 2:
				u.declared = u.id + "-renamed"
				want += 2 // mismatch plus unregistered id
			case 3:
				u.status = "retired"
				want++
			case 4:
				u.noDir = true
				want += 2 // missing declaration plus missing path
			}
			units = append(units, u)
		}

		res, err := NewService(NewLoader(buildRepo(rt, units...)), "").Validate(context.Background(), Scope{})
		require.NoError(rt, err)
		require.Equal(rt, want, res.Report.Len(), "%v", res.Report.Messages())
	})
}
