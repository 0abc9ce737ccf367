package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Пример Статьи", "primer-stati"},
		{"Hello World", "hello-world"},
		{"  Много   пробелов  ", "mnogo-probelov"},
		{"Щи и борщ", "shchi-i-borshch"},
		{"Мягкий знак: боль", "myagkij-znak-bol"},
		{"C++ и Go!", "c-i-go"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"", ""},
		{"Ёжик в тумане 2", "yozhik-v-tumane-2"},
	}
	for _, c := range cases {
		if got := Make(c.in); got != c.want {
			t.Errorf("Make(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEnsureUnique(t *testing.T) {
	taken := []string{"primer-stati", "primer-stati-2", "other"}

	if got := EnsureUnique("fresh", taken, ""); got != "fresh" {
		t.Errorf("free candidate changed: %q", got)
	}
	if got := EnsureUnique("primer-stati", taken, ""); got != "primer-stati-3" {
		t.Errorf("conflicting candidate = %q, want primer-stati-3", got)
	}
	// An edited record keeps its own slug.
	if got := EnsureUnique("other", taken, "other"); got != "other" {
		t.Errorf("edited record lost its slug: %q", got)
	}
	// But still cannot steal another record's slug.
	if got := EnsureUnique("primer-stati", taken, "other"); got != "primer-stati-3" {
		t.Errorf("edited record stole a slug: %q", got)
	}
}
