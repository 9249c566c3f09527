package consensus

import "testing"

func TestRoleSetString(t *testing.T) {
	tests := []struct {
		roles RoleSet
		want  string
	}{
		{RoleSet{}, "......"},
		{RoleSet{M: true, C: true, L: true, R: true, A: true, D: true}, "MCLRAD"},
		{RoleSet{M: true, R: true}, "M..R.."},
		{RoleSet{C: true, R: true}, ".C.R.."},
		{RoleSet{L: true, R: true}, "..LR.."},
		{RoleSet{R: true, A: true}, "...RA."},
		{RoleSet{R: true, D: true}, "...R.D"},
	}
	for _, tt := range tests {
		if got := tt.roles.String(); got != tt.want {
			t.Errorf("String(%+v) = %q, want %q", tt.roles, got, tt.want)
		}
	}
}

func TestRoleSetStringRoundTrip(t *testing.T) {
	// Exhaustive over all 64 flag combinations.
	for bits := 0; bits < 64; bits++ {
		r := RoleSet{
			M: bits&1 != 0,
			C: bits&2 != 0,
			L: bits&4 != 0,
			R: bits&8 != 0,
			A: bits&16 != 0,
			D: bits&32 != 0,
		}
		got, err := ParseRoleSet(r.String())
		if err != nil {
			t.Fatalf("ParseRoleSet(%q): %v", r.String(), err)
		}
		if got != r {
			t.Fatalf("round trip of %q: got %+v, want %+v", r.String(), got, r)
		}
	}
}

func TestParseRoleSetErrors(t *testing.T) {
	bad := []string{
		"",
		"M..R.",
		"M..R...",
		"X..R..",
		"CM.R..", // letters out of position
		"mclrad",
		"M..R.,",
	}
	for _, s := range bad {
		if _, err := ParseRoleSet(s); err == nil {
			t.Errorf("ParseRoleSet(%q): expected error", s)
		}
	}
}

func TestRoleSetWordRoundTrip(t *testing.T) {
	for bits := 0; bits < 64; bits++ {
		r := RoleSet{
			M: bits&1 != 0,
			C: bits&2 != 0,
			L: bits&4 != 0,
			R: bits&8 != 0,
			A: bits&16 != 0,
			D: bits&32 != 0,
		}
		w := r.word()
		if ModeOf(w) != MODE_ROLE {
			t.Fatalf("word(%v) has mode %b", r, ModeOf(w))
		}
		got, err := RoleSetFromWord(w)
		if err != nil {
			t.Fatalf("RoleSetFromWord(%#x): %v", w, err)
		}
		if got != r {
			t.Fatalf("word round trip: got %+v, want %+v", got, r)
		}
	}
}

func TestRoleSetWordMalformed(t *testing.T) {
	t.Run("reserved bits", func(t *testing.T) {
		w := RoleSet{R: true}.word() | 1
		if _, err := RoleSetFromWord(w); err == nil {
			t.Fatal("expected error for nonzero reserved bits")
		}
	})
	t.Run("coin mode", func(t *testing.T) {
		if _, err := RoleSetFromWord(42); err == nil {
			t.Fatal("expected error for coin-mode word")
		}
	})
	t.Run("policy mode", func(t *testing.T) {
		if _, err := RoleSetFromWord(PolicyRecord{Type: POLICY_NOOP}.word()); err == nil {
			t.Fatal("expected error for policy-mode word")
		}
	})
}

func TestRoleSetXor(t *testing.T) {
	a := RoleSet{M: true, R: true}
	b := RoleSet{C: true, R: true}
	want := RoleSet{M: true, C: true}
	if got := a.Xor(b); got != want {
		t.Fatalf("Xor = %+v, want %+v", got, want)
	}
	if got := a.Xor(a); !got.Empty() {
		t.Fatalf("self Xor = %+v, want empty", got)
	}
}
