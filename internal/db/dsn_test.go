package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/commerce", "postgres://u:p@localhost:5432/commerce"},
		{"  postgres://u:p@localhost/commerce  ", "postgres://u:p@localhost/commerce"},
		{`"postgresql://u:p@localhost/commerce"`, "postgresql://u:p@localhost/commerce"},
		{"host=localhost user=u dbname=commerce", "host=localhost user=u dbname=commerce sslmode=disable"},
		{"host=localhost   user=u  sslmode=require", "host=localhost user=u sslmode=require"},
		{"file:test?mode=memory", "file:test?mode=memory"},
		{"data/app.db", "data/app.db"},
		{"", ""},
		{"not a dsn at all", "not a dsn at all"},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSQLiteDSN(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"file:test?mode=memory&cache=shared", true},
		{":memory:", true},
		{"data/app.db", true},
		{"data/app.sqlite", true},
		{"postgres://u:p@localhost/commerce", false},
		{"host=localhost dbname=commerce", false},
	}
	for _, c := range cases {
		if got := IsSQLiteDSN(c.in); got != c.want {
			t.Errorf("IsSQLiteDSN(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
