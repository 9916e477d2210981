package gestures

import (
	"sort"
	"testing"

	"github.com/go-mil/mil/pkg/milerr"
)

func permStrings(perms []Permutation) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}
	sort.Strings(out)
	return out
}

func TestCompileExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "single kind",
			expr: "touch",
			want: []string{"touch:1"},
		},
		{
			name: "multiplicity",
			expr: "touch:2",
			want: []string{"touch:1+touch:2"},
		},
		{
			name: "conjunction",
			expr: "pen+touch",
			want: []string{"pen:1+touch:1"},
		},
		{
			name: "conjunction is order independent",
			expr: "touch+pen",
			want: []string{"pen:1+touch:1"},
		},
		{
			name: "repeated kind accumulates ordinals",
			expr: "touch+touch",
			want: []string{"touch:1+touch:2"},
		},
		{
			name: "alternation yields every non-empty subset",
			expr: "pen|touch+touch",
			want: []string{
				"pen:1+touch:1",
				"pen:1+touch:1+touch:2",
				"touch:1+touch:2",
			},
		},
		{
			name: "alternation with multiplicity",
			expr: "pen|touch+touch:2",
			want: []string{
				"pen:1+touch:1+touch:2",
				"pen:1+touch:1+touch:2+touch:3",
				"touch:1+touch:2+touch:3",
			},
		},
		{
			name: "case insensitive with spaces",
			expr: " Pen + TOUCH ",
			want: []string{"pen:1+touch:1"},
		},
		{
			name: "any kind",
			expr: "any:2",
			want: []string{"any:1+any:2"},
		},
		{
			name: "duplicate branches collapse",
			expr: "touch|touch",
			want: []string{"touch:1", "touch:1+touch:2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms, err := CompileExpression(tt.expr)
			if err != nil {
				t.Fatalf("CompileExpression(%q): %v", tt.expr, err)
			}
			got := permStrings(perms)
			if len(got) != len(tt.want) {
				t.Fatalf("permutations = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("permutations = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestCompileExpression_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"unknown kind", "stylus"},
		{"zero multiplicity", "touch:0"},
		{"oversized multiplicity", "touch:11"},
		{"malformed multiplicity", "touch:x"},
		{"dangling colon", "touch:"},
		{"any inside alternation", "any|touch"},
		{"empty expression", "  "},
		{"empty conjunct", "touch+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileExpression(tt.expr)
			if err == nil {
				t.Fatalf("CompileExpression(%q) should fail", tt.expr)
			}
			if !milerr.IsKind(err, milerr.KindInvalidSpec) {
				t.Errorf("error kind = %v, want InvalidSpec", err)
			}
		})
	}
}

func TestCompileExpression_Deterministic(t *testing.T) {
	first, err := CompileExpression("pen|touch+touch:2")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := CompileExpression("pen|touch+touch:2")
		if err != nil {
			t.Fatal(err)
		}
		a, b := permStrings(first), permStrings(again)
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("compilation not deterministic: %v vs %v", a, b)
			}
		}
	}
}
