package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("API_PORT", " 8080 ")
	api := New().Prefix("API_")
	if got := api.Get("PORT", "x"); got != "8080" {
		t.Fatalf("Get = %q", got)
	}
	if got := api.Get("MISSING", "def"); got != "def" {
		t.Fatalf("Get default = %q", got)
	}
	if got := New().Prefix("A_").Prefix("B_").Get("PORT", "none"); got != "none" {
		t.Fatalf("nested prefix leaked: %q", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"YES", false, true},
		{"on", false, true},
		{"1", false, true},
		{"no", true, false},
		{"garbage", true, false},
	}
	for _, c := range cases {
		t.Setenv("F_FLAG", c.val)
		if got := New().Prefix("F_").GetBool("FLAG", c.def); got != c.want {
			t.Fatalf("GetBool(%q, %v) = %v", c.val, c.def, got)
		}
	}
}

func TestGetInt(t *testing.T) {
	cases := []struct {
		val  string
		want int
	}{
		{"", 7},
		{"12", 12},
		{" 3 ", 3},
		{"-1", 7},
		{"x1", 7},
	}
	for _, c := range cases {
		t.Setenv("N_VAL", c.val)
		if got := New().Prefix("N_").GetInt("VAL", 7); got != c.want {
			t.Fatalf("GetInt(%q) = %d, want %d", c.val, got, c.want)
		}
	}
}
