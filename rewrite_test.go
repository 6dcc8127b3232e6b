package mhtml

import (
	"strings"
	"testing"
)

func imageArchive() *Archive {
	return testArchive(
		fixtureEntry{"pages/index.html", []byte("irrelevant")},
		fixtureEntry{"images/logo.png", pngStub},
		fixtureEntry{"images/my photo.jpg", []byte{0xff, 0xd8, 0xff}},
		fixtureEntry{"data/blob.bin", []byte{0x00}},
	)
}

func TestRewriteImages_Local(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="images/logo.png" alt="logo">`, a, "")
	if out != `<img src="cid:img0@mhtml.invalid" alt="logo">` {
		t.Fatalf("out = %q", out)
	}
	if len(res) != 1 {
		t.Fatalf("resources = %v", res)
	}
	r := res[0]
	if r.Path != "images/logo.png" || r.ContentID != "img0@mhtml.invalid" || r.MIMEType != "image/png" {
		t.Fatalf("resource = %+v", r)
	}
}

func TestRewriteImages_RelativeToBase(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="../images/logo.png">`, a, "pages")
	if !strings.Contains(out, "cid:img0@mhtml.invalid") {
		t.Fatalf("out = %q", out)
	}
	if len(res) != 1 || res[0].Path != "images/logo.png" {
		t.Fatalf("resources = %v", res)
	}
}

func TestRewriteImages_RootRelative(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="/images/logo.png">`, a, "pages")
	if !strings.Contains(out, "cid:") || len(res) != 1 {
		t.Fatalf("out = %q, resources = %v", out, res)
	}
}

func TestRewriteImages_Untouched(t *testing.T) {
	a := imageArchive()
	cases := []struct {
		name string
		html string
	}{
		{"http", `<img src="http://example.com/logo.png">`},
		{"https", `<img src="https://example.com/logo.png">`},
		{"scheme case", `<img src="HTTPS://example.com/logo.png">`},
		{"data uri", `<img src="data:image/png;base64,AAAA">`},
		{"cid uri", `<img src="cid:already@inline">`},
		{"protocol relative", `<img src="//example.com/logo.png">`},
		{"missing entry", `<img src="images/absent.png">`},
		{"escapes root", `<img src="../../etc/passwd">`},
		{"empty value", `<img src="">`},
		{"no src", `<img alt="decorative">`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, res := RewriteImages(tc.html, a, "pages")
			if out != tc.html {
				t.Fatalf("out = %q, want unchanged", out)
			}
			if len(res) != 0 {
				t.Fatalf("resources = %v, want none", res)
			}
		})
	}
}

func TestRewriteImages_DedupeSharedPath(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="images/logo.png"><img src="images/logo.png">`, a, "")
	if len(res) != 1 {
		t.Fatalf("resources = %v, want one", res)
	}
	if n := strings.Count(out, "cid:img0@mhtml.invalid"); n != 2 {
		t.Fatalf("out = %q, want two identical rewrites", out)
	}
}

func TestRewriteImages_FirstEncounterOrder(t *testing.T) {
	a := testArchive(
		fixtureEntry{"b.png", pngStub},
		fixtureEntry{"a.png", pngStub},
	)
	_, res := RewriteImages(`<img src="b.png"><img src="a.png">`, a, "")
	if len(res) != 2 || res[0].Path != "b.png" || res[1].Path != "a.png" {
		t.Fatalf("resources = %v, want document order", res)
	}
	if res[0].ContentID != "img0@mhtml.invalid" || res[1].ContentID != "img1@mhtml.invalid" {
		t.Fatalf("content ids = %q, %q", res[0].ContentID, res[1].ContentID)
	}
}

func TestRewriteImages_QueryAndFragmentStripped(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="images/logo.png?v=2#top">`, a, "")
	if !strings.Contains(out, "cid:img0@mhtml.invalid") || len(res) != 1 {
		t.Fatalf("out = %q, resources = %v", out, res)
	}
}

func TestRewriteImages_URLEscapedPath(t *testing.T) {
	a := imageArchive()
	out, res := RewriteImages(`<img src="images/my%20photo.jpg">`, a, "")
	if !strings.Contains(out, "cid:") || len(res) != 1 {
		t.Fatalf("out = %q, resources = %v", out, res)
	}
	if res[0].Path != "images/my photo.jpg" {
		t.Fatalf("path = %q", res[0].Path)
	}
}

func TestRewriteImages_AttributeVariants(t *testing.T) {
	a := imageArchive()
	cases := []string{
		`<IMG SRC="images/logo.png">`,
		`<img src='images/logo.png'>`,
		`<img class="hero" src="images/logo.png" width="10">`,
		`<img
			src="images/logo.png">`,
	}
	for _, html := range cases {
		out, res := RewriteImages(html, a, "")
		if !strings.Contains(out, "cid:img0@mhtml.invalid") || len(res) != 1 {
			t.Errorf("html %q not rewritten: %q (%d resources)", html, out, len(res))
		}
	}
}

func TestRewriteImages_SkipsExistingContentIDs(t *testing.T) {
	a := imageArchive()
	html := `<a href="cid:img0@mhtml.invalid">x</a><img src="images/logo.png">`
	out, res := RewriteImages(html, a, "")
	if len(res) != 1 {
		t.Fatalf("resources = %v", res)
	}
	if res[0].ContentID != "img1@mhtml.invalid" {
		t.Fatalf("content id = %q, want the taken id skipped", res[0].ContentID)
	}
	if !strings.Contains(out, `src="cid:img1@mhtml.invalid"`) {
		t.Fatalf("out = %q", out)
	}
}

func TestRewriteImages_UnknownExtension(t *testing.T) {
	a := testArchive(fixtureEntry{"data/blob.weird", []byte{1, 2, 3}})
	_, res := RewriteImages(`<img src="data/blob.weird">`, a, "")
	if len(res) != 1 || res[0].MIMEType != "application/octet-stream" {
		t.Fatalf("resources = %v", res)
	}
}

func TestResolveRef(t *testing.T) {
	cases := []struct {
		base, ref string
		want      string
		ok        bool
	}{
		{"", "logo.png", "logo.png", true},
		{"pages", "logo.png", "pages/logo.png", true},
		{"pages", "../images/logo.png", "images/logo.png", true},
		{"pages", "/images/logo.png", "images/logo.png", true},
		{"pages", `\images\logo.png`, "images/logo.png", true},
		{"pages", "./a/./b.png", "pages/a/b.png", true},
		{"", "../escape.png", "", false},
		{"pages", "../../escape.png", "", false},
	}
	for _, tc := range cases {
		got, ok := resolveRef(tc.base, tc.ref)
		if got != tc.want || ok != tc.ok {
			t.Errorf("resolveRef(%q, %q) = (%q, %v), want (%q, %v)", tc.base, tc.ref, got, ok, tc.want, tc.ok)
		}
	}
}
