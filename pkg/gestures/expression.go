package gestures

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/milerr"
)

// maxMultiplicity bounds the :N suffix of a pointer-type term.
const maxMultiplicity = 10

// Ordinal names one expected pointer of a permutation: the i-th pointer of
// its kind, counted from 1.
type Ordinal struct {
	Kind  events.PointerKind
	Index int
}

// String returns the "kind:i" form of the ordinal.
func (o Ordinal) String() string {
	return fmt.Sprintf("%s:%d", o.Kind, o.Index)
}

// Matches reports whether a pointer of the given kind can fill this slot.
func (o Ordinal) Matches(kind events.PointerKind) bool {
	return o.Kind == events.KindAny || o.Kind == kind
}

// Permutation is one concrete assignment of pointer kinds to slots produced
// by expanding a pointer-type expression. Ordinals are sorted by kind then
// index; their count is the gesture's pointer count for this permutation.
type Permutation struct {
	Ordinals []Ordinal
}

// PointerCount returns the number of pointers this permutation requires.
func (p Permutation) PointerCount() int {
	return len(p.Ordinals)
}

// String returns the canonical "kind:i+kind:j" form of the permutation.
func (p Permutation) String() string {
	parts := make([]string, len(p.Ordinals))
	for i, o := range p.Ordinals {
		parts[i] = o.String()
	}
	return strings.Join(parts, "+")
}

// kindCount is one parsed term of an expression: a kind with a multiplicity.
type kindCount struct {
	kind  events.PointerKind
	count int
}

// CompileExpression parses a case-insensitive pointer-type expression such
// as "pen|touch+touch:2" into its distinct permutations.
//
// "+" joins simultaneous requirements. "|" joins alternatives, any non-empty
// subset of which may be present; each subset yields a permutation. The
// special kind "any" may not appear inside an alternation. Expansion
// deduplicates logically equivalent permutations, so "pen+touch" and
// "touch+pen" compile to the same single permutation.
func CompileExpression(expr string) ([]Permutation, error) {
	const op = "gestures.CompileExpression"
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, milerr.InvalidSpec(op, "empty pointer-type expression")
	}

	// Parse each conjunct into its alternative subsets.
	var conjuncts [][][]kindCount
	for _, conjunct := range strings.Split(trimmed, "+") {
		alternatives := strings.Split(conjunct, "|")
		terms := make([]kindCount, 0, len(alternatives))
		for _, alt := range alternatives {
			term, err := parseTerm(alt)
			if err != nil {
				return nil, err
			}
			if term.kind == events.KindAny && len(alternatives) > 1 {
				return nil, milerr.InvalidSpec(op, "'any' may not appear in an alternation: %q", conjunct)
			}
			terms = append(terms, term)
		}
		subsets := nonEmptySubsets(terms)
		if len(subsets) == 0 {
			return nil, milerr.InvalidSpec(op, "empty conjunct in %q", expr)
		}
		conjuncts = append(conjuncts, subsets)
	}

	// Cartesian product of the per-conjunct subsets, then canonicalize.
	combos := [][]kindCount{nil}
	for _, subsets := range conjuncts {
		var next [][]kindCount
		for _, combo := range combos {
			for _, subset := range subsets {
				merged := make([]kindCount, 0, len(combo)+len(subset))
				merged = append(merged, combo...)
				merged = append(merged, subset...)
				next = append(next, merged)
			}
		}
		combos = next
	}

	seen := make(map[string]struct{})
	var permutations []Permutation
	for _, combo := range combos {
		perm := buildPermutation(combo)
		key := perm.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		permutations = append(permutations, perm)
	}
	return permutations, nil
}

// parseTerm parses a single "kind" or "kind:N" term.
func parseTerm(term string) (kindCount, error) {
	const op = "gestures.CompileExpression"
	name, suffix, hasSuffix := strings.Cut(strings.TrimSpace(term), ":")
	kind := events.ParseKind(name)
	if kind == events.KindUnknown {
		return kindCount{}, milerr.InvalidSpec(op, "unknown pointer kind %q", strings.TrimSpace(term))
	}
	count := 1
	if hasSuffix {
		n, err := strconv.Atoi(strings.TrimSpace(suffix))
		if err != nil {
			return kindCount{}, milerr.InvalidSpec(op, "malformed multiplicity in %q", term)
		}
		if n < 1 || n > maxMultiplicity {
			return kindCount{}, milerr.InvalidSpec(op, "multiplicity %d out of range 1..%d in %q", n, maxMultiplicity, term)
		}
		count = n
	}
	return kindCount{kind: kind, count: count}, nil
}

// nonEmptySubsets enumerates every non-empty subset of terms, preserving the
// written order inside each subset. A single term yields itself.
func nonEmptySubsets(terms []kindCount) [][]kindCount {
	if len(terms) == 1 {
		return [][]kindCount{terms}
	}
	var subsets [][]kindCount
	for mask := 1; mask < 1<<len(terms); mask++ {
		var subset []kindCount
		for i, term := range terms {
			if mask&(1<<i) != 0 {
				subset = append(subset, term)
			}
		}
		subsets = append(subsets, subset)
	}
	return subsets
}

// buildPermutation aggregates per-kind counts and emits the sorted ordinal
// list, numbering each kind's slots from 1.
func buildPermutation(combo []kindCount) Permutation {
	totals := make(map[events.PointerKind]int)
	for _, kc := range combo {
		totals[kc.kind] += kc.count
	}
	kinds := make([]events.PointerKind, 0, len(totals))
	for kind := range totals {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var ordinals []Ordinal
	for _, kind := range kinds {
		for i := 1; i <= totals[kind]; i++ {
			ordinals = append(ordinals, Ordinal{Kind: kind, Index: i})
		}
	}
	return Permutation{Ordinals: ordinals}
}
