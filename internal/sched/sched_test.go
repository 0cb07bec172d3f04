// internal/sched/sched_test.go
package sched

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", PolicyNone, true},
		{"none", PolicyNone, true},
		{"high", PolicyHigh, true},
		{"realtime", PolicyRealtime, true},
		{"fastest", PolicyNone, false},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.ok && err != nil {
			t.Fatalf("Parse(%q) err=%v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("Parse(%q) expected error", c.in)
		}
		if c.ok && got != c.want {
			t.Fatalf("Parse(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestApplyIsInitOnce(t *testing.T) {
	if err := Apply(PolicyNone); err != nil {
		t.Fatalf("Apply(none) err=%v", err)
	}
	// Same policy: first result again.
	if err := Apply(PolicyNone); err != nil {
		t.Fatalf("repeat Apply(none) err=%v", err)
	}
	// Different policy after the fact is refused.
	if err := Apply(PolicyRealtime); err == nil {
		t.Fatalf("expected error switching policy after apply")
	}
}
