package utils

import "testing"

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("CAMDRAM_TEST_STR", "  value ")

	if got := Env("CAMDRAM_TEST_STR", "def"); got != "value" {
		t.Fatalf("Env = %q", got)
	}
	if got := Env("CAMDRAM_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("Env missing = %q", got)
	}
}

func TestFillKeepsExistingValue(t *testing.T) {
	t.Setenv(EnvClientID, "from-env")

	set := "from-file"
	Fill(&set, EnvClientID)
	if set != "from-file" {
		t.Fatalf("Fill overwrote %q", set)
	}

	var empty string
	Fill(&empty, EnvClientID)
	if empty != "from-env" {
		t.Fatalf("Fill = %q", empty)
	}
}
