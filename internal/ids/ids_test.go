package ids

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNewIsUUIDv4(t *testing.T) {
	id := New()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("parse %q: %v", id, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected version 4, got %d", parsed.Version())
	}
	if !Valid(id) {
		t.Fatalf("issued id %q should be valid", id)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := New()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d calls: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidRejectsTraversal(t *testing.T) {
	cases := []string{"", "..", "../etc", "a/b", `a\b`, "a.json", "with space", strings.Repeat("a", maxLen+1)}
	for _, c := range cases {
		if Valid(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestIssuedOnlyAcceptsNewShape(t *testing.T) {
	if id := New(); !Issued(id) {
		t.Fatalf("expected %q to be issued", id)
	}
	upper := strings.ToUpper(New())
	v1 := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	cases := []string{"", "README", "nightly-backup", "stale-col", upper, v1, "{" + New() + "}", "urn:uuid:" + New()}
	for _, c := range cases {
		if Issued(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestValidProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("alphanumeric ids up to the limit are valid", prop.ForAll(
		func(s string) bool {
			if s == "" || len(s) > maxLen {
				return !Valid(s)
			}
			return Valid(s)
		},
		gen.RegexMatch("[a-zA-Z0-9]*"),
	))

	properties.Property("ids containing a path separator are never valid", prop.ForAll(
		func(prefix, suffix string) bool {
			return !Valid(prefix + "/" + suffix)
		},
		gen.RegexMatch("[a-zA-Z0-9]*"),
		gen.RegexMatch("[a-zA-Z0-9]*"),
	))

	properties.TestingRun(t)
}
