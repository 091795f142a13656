package filter

import "testing"

func TestFilterRejectsBareSchemes(t *testing.T) {
	for _, c := range []string{"https://", "http://", "//", "http:", "ftp://"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected", c)
		}
	}
}

func TestFilterRejectsMimeType(t *testing.T) {
	for _, c := range []string{"application/json", "text/html; charset=utf-8", "image/png"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as MIME shape", c)
		}
	}
}

func TestFilterRejectsDottedIdentifier(t *testing.T) {
	for _, c := range []string{"foo.bar.baz", "a.b", "com.example.MyClass"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as dotted identifier", c)
		}
	}
}

func TestFilterAllowsSlashedDottedPath(t *testing.T) {
	if _, ok := Filter("/api/v1/users", Options{}); !ok {
		t.Error("Filter(/api/v1/users) should be allowed")
	}
}

func TestFilterRejectsW3CNamespace(t *testing.T) {
	for _, c := range []string{
		"http://www.w3.org/2000/svg",
		"http://schemas.xmlsoap.org/soap/envelope/",
	} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as W3C/XML namespace", c)
		}
	}
}

func TestFilterRejectsGenericTestURL(t *testing.T) {
	for _, c := range []string{"http://localhost", "http://a", "http://b"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as generic test URL", c)
		}
	}
}

func TestFilterAllowsLocalhostWithPath(t *testing.T) {
	if _, ok := Filter("http://localhost/api/users", Options{}); !ok {
		t.Error("Filter(http://localhost/api/users) should be allowed")
	}
}

func TestFilterRejectsPlaceholderOnly(t *testing.T) {
	for _, c := range []string{"FUZZ/FUZZ", "{x}/{y}", "{FUZZ}"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as placeholder-only", c)
		}
	}
}

func TestFilterRejectsDateFormat(t *testing.T) {
	if _, ok := Filter("/yyyy/mm/dd/archive", Options{}); ok {
		t.Error("Filter(/yyyy/mm/dd/archive) should be rejected as date-format placeholder")
	}
}

func TestFilterRejectsIANATimezone(t *testing.T) {
	for _, c := range []string{"America/New_York", "Europe/London"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected as IANA timezone", c)
		}
	}
}

func TestFilterRejectsNoStructuralSignal(t *testing.T) {
	for _, c := range []string{"hello world", "foo", "just some text"} {
		if _, ok := Filter(c, Options{}); ok {
			t.Errorf("Filter(%q) should be rejected: no structural URL signal", c)
		}
	}
}

func TestFilterAllowsBareHostname(t *testing.T) {
	if _, ok := Filter("api.example.com", Options{}); !ok {
		t.Error("Filter(api.example.com) should be allowed: looks like a hostname")
	}
}

func TestFilterTrimsUnbalancedTrailingBracket(t *testing.T) {
	got, ok := Filter("/api/users)", Options{})
	if !ok {
		t.Fatal("expected candidate to survive")
	}
	if got != "/api/users" {
		t.Errorf("got %q, want /api/users", got)
	}
}

func TestFilterKeepsBalancedBracket(t *testing.T) {
	got, ok := Filter("/api/(users)", Options{})
	if !ok {
		t.Fatal("expected candidate to survive")
	}
	if got != "/api/(users)" {
		t.Errorf("got %q, want /api/(users) unchanged", got)
	}
}

func TestHasAllowedExtension(t *testing.T) {
	if !HasAllowedExtension("/static/app.js", Options{}) {
		t.Error("expected.js to be an allowed extension")
	}
	if HasAllowedExtension("/static/app.xyz", Options{}) {
		t.Error("expected.xyz to not be allowed by default")
	}
	if !HasAllowedExtension("/static/app.xyz", Options{Extensions: []string{".xyz"}}) {
		t.Error("expected.xyz to be allowed once added via Options.Extensions")
	}
}
