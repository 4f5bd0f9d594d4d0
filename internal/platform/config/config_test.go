package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kit "orgcore/internal/platform/testkit"
)

func TestPrefixComposition(t *testing.T) {
	c := New().Prefix("SERVICE_").Prefix("PGSQL_")
	if got := c.key("DBURL"); got != "SERVICE_PGSQL_DBURL" {
		t.Fatalf("key = %q", got)
	}
}

func TestMustAccessors(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_NAME", "  orgcore ")
	t.Setenv("T_N", " 8 ")
	t.Setenv("T_D", "2s")
	t.Setenv("T_PORT", "4000")
	t.Setenv("T_BADPORT", "70000")
	t.Setenv("T_BADINT", "x")

	if c.MustString("NAME") != "orgcore" || c.MustInt("N") != 8 || c.MustDuration("D") != 2*time.Second {
		t.Fatalf("must accessors mismatch")
	}
	if c.MustPort("PORT") != ":4000" {
		t.Fatalf("MustPort mismatch")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
	kit.MustPanic(t, func() { _ = c.MustInt("BADINT") })
	kit.MustPanic(t, func() { _ = c.MustPort("BADPORT") })
	kit.MustPanic(t, func() { c.Require("NAME", "MISSING") })
	kit.MustNotPanic(t, func() { c.Require("NAME", "N") })
}

func TestMayAccessors(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_I", "12")
	t.Setenv("M_BADI", "nope")
	t.Setenv("M_B", "true")
	t.Setenv("M_DUR", "1m")
	t.Setenv("M_CSV", " a, ,b ,")
	t.Setenv("M_EMPTYCSV", " , ")

	if c.MayInt("I", 1) != 12 || c.MayInt("BADI", 1) != 1 || c.MayInt("NONE", 3) != 3 {
		t.Fatalf("MayInt mismatch")
	}
	if !c.MayBool("B", false) || c.MayDuration("DUR", 0) != time.Minute {
		t.Fatalf("MayBool/MayDuration mismatch")
	}
	if got := c.MayCSV("CSV", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV = %v", got)
	}
	if got := c.MayCSV("EMPTYCSV", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Fatalf("MayCSV default = %v", got)
	}
	if c.MayString("NONE", "x") != "x" {
		t.Fatalf("MayString default")
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	t.Setenv("E_MODE", "Redis")
	if got := c.MayEnum("MODE", "memory", "memory", "redis"); got != "redis" {
		t.Fatalf("MayEnum = %q", got)
	}
	if got := c.MayEnum("UNSET", "memory", "memory", "redis"); got != "memory" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_BAD", "disk")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "memory", "memory", "redis") })
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test.env")
	if err := os.WriteFile(p, []byte("ORGCORE_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORGCORE_DOTENV_PROBE", "")
	os.Unsetenv("ORGCORE_DOTENV_PROBE")

	if got := LoadDotenv(filepath.Join(dir, "missing.env"), p); got != p {
		t.Fatalf("LoadDotenv picked %q", got)
	}
	if os.Getenv("ORGCORE_DOTENV_PROBE") != "loaded" {
		t.Fatalf("dotenv value not loaded")
	}
	if LoadDotenv(filepath.Join(dir, "none.env")) != "" {
		t.Fatalf("missing file should load nothing")
	}
}
