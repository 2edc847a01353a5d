package vault

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	path, key, err := ParseRef("vault:secret/dsr/db#password")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if path != "secret/dsr/db" || key != "password" {
		t.Fatalf("got %q %q", path, key)
	}

	for _, bad := range []string{
		"secret/dsr/db#password",
		"vault:secret/dsr/db",
		"vault:secret#password",
		"vault:/secret/db#password",
		"vault:secret/db#",
	} {
		if _, _, err := ParseRef(bad); !errors.Is(err, ErrBadRef) {
			t.Errorf("%q: err = %v", bad, err)
		}
	}
}

func TestSplitMount(t *testing.T) {
	m, rel := splitMount("secret/dsr/db")
	if m != "secret" || rel != "dsr/db" {
		t.Fatalf("got %q %q", m, rel)
	}
}
