package filterop

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		property string
		cond     Condition
		want     string
	}{
		{
			name:     "string eq with embedded quote",
			property: "name",
			cond:     Condition{Op: Eq, Operand: "o'brien", Category: CategoryString},
			want:     "name eq 'o''brien'",
		},
		{
			name:     "string eq simple",
			property: "name",
			cond:     Condition{Op: Eq, Operand: "hello", Category: CategoryString},
			want:     "name eq 'hello'",
		},
		{
			name:     "number gt",
			property: "n",
			cond:     Condition{Op: Gt, Operand: 42, Category: CategoryNumber},
			want:     "n gt 42",
		},
		{
			name:     "boolean ne",
			property: "flag",
			cond:     Condition{Op: Ne, Operand: true, Category: CategoryBoolean},
			want:     "flag ne true",
		},
		{
			name:     "date le",
			property: "t",
			cond:     Condition{Op: Le, Operand: "2020-01-02T03:04:05.006Z", Category: CategoryDate},
			want:     "t le datetime'2020-01-02T03:04:05.006Z'",
		},
		{
			name:     "guid eq",
			property: "id",
			cond:     Condition{Op: Eq, Operand: "550e8400-e29b-41d4-a716-446655440000", Category: CategoryGuid},
			want:     "id eq guid'550e8400-e29b-41d4-a716-446655440000'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.property, tt.cond)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op   Op
		cmp  int
		want bool
	}{
		{Eq, 0, true}, {Eq, 1, false},
		{Ne, 0, false}, {Ne, -1, true},
		{Lt, -1, true}, {Lt, 0, false},
		{Le, 0, true}, {Le, 1, false},
		{Gt, 1, true}, {Gt, 0, false},
		{Ge, 0, true}, {Ge, -1, false},
	}
	for _, tt := range tests {
		if got := Compare(tt.op, tt.cmp); got != tt.want {
			t.Errorf("Compare(%v, %d) = %v, want %v", tt.op, tt.cmp, got, tt.want)
		}
	}
}

// TestRender_ShapeNeverCrashes exercises Render across arbitrary
// property names and string operands, checking the one invariant spec
// §8 item 7 promises regardless of operand content: the rendered
// expression always starts with "<property> <token> ".
func TestRender_ShapeNeverCrashes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ops := []Op{Eq, Ne, Lt, Le, Gt, Ge}

	properties.Property("rendered expression is prefixed by property and token", prop.ForAll(
		func(property string, operand string, opIdx int) bool {
			op := ops[opIdx%len(ops)]
			cond := Condition{Op: op, Operand: operand, Category: CategoryString}
			got := Render(property, cond)
			prefix := property + " " + op.token() + " "
			return len(got) >= len(prefix) && got[:len(prefix)] == prefix
		},
		gen.AlphaString(),
		gen.AnyString(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
