package tier

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Tier
		ok   bool
	}{
		{"observe", Observe, true},
		{"act", Act, true},
		{"commit", Commit, true},
		{"Commit", 0, false},
		{"", 0, false},
		{"escalate", 0, false},
	}

	for _, c := range cases {
		got, ok := Parse(c.in)
		if ok != c.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLess(t *testing.T) {
	t.Parallel()

	if !Observe.Less(Act) {
		t.Error("Observe should be less than Act")
	}
	if !Act.Less(Commit) {
		t.Error("Act should be less than Commit")
	}
	if Commit.Less(Observe) {
		t.Error("Commit should not be less than Observe")
	}
	if Observe.Less(Observe) {
		t.Error("a tier is not less than itself")
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if Observe.String() != "observe" {
		t.Errorf("Observe.String() = %q", Observe.String())
	}
	if got := Tier(99).String(); got != "unknown" {
		t.Errorf("Tier(99).String() = %q, want unknown", got)
	}
}
