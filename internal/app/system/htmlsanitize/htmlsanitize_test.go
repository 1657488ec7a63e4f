package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize_EditorContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		keep    []string
		dropped []string
	}{
		{"empty", "", nil, nil},
		{"newsletter markup", "<p><strong>Urgent</strong> <em>ce soir</em> <u>à 20h</u></p>",
			[]string{"<strong>Urgent</strong>", "<em>ce soir</em>", "<u>à 20h</u>"}, nil},
		{"script", `<p>Budget</p><script>alert(1)</script>`,
			[]string{"<p>Budget</p>"}, []string{"<script", "alert"}},
		{"event handler", `<p onclick="steal()">Mairie</p>`,
			[]string{"Mairie"}, []string{"onclick"}},
		{"javascript link", `<a href="javascript:alert(1)">LSPD</a>`,
			[]string{"LSPD"}, []string{"javascript:"}},
		{"safe link", `<a href="https://discord.gg/sagov">Discord</a>`,
			[]string{`href="https://discord.gg/sagov"`}, nil},
		{"iframe", `<iframe src="https://evil.example"></iframe><p>ok</p>`,
			[]string{"<p>ok</p>"}, []string{"iframe"}},
		{"image onerror", `<img src="https://i.imgur.com/a.png" onerror="x()">`,
			[]string{`src="https://i.imgur.com/a.png"`}, []string{"onerror"}},
		{"data image", `<img src="data:image/png;base64,AAAA">`,
			nil, []string{"data:"}},
		{"form", `<form action="/x"><input name="token"></form>`,
			nil, []string{"<form", "<input"}},
		{"budget table", `<table class="budget"><tr><td colspan="2" style="text-align: right">12 000 $</td></tr></table>`,
			[]string{`class="budget"`, `colspan="2"`, "text-align", "12 000 $"}, nil},
		{"style tag", `<style>body{display:none}</style><p>x</p>`,
			[]string{"<p>x</p>"}, []string{"<style", "display"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			for _, s := range tt.keep {
				if !strings.Contains(got, s) {
					t.Errorf("expected %q in %q", s, got)
				}
			}
			for _, s := range tt.dropped {
				if strings.Contains(got, s) {
					t.Errorf("expected %q removed from %q", s, got)
				}
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Réunion du conseil lundi", true},
		{"recettes > dépenses", true},
		{"3 < 4", true},
		{"<p>Réunion</p>", false},
	}
	for _, tt := range tests {
		if got := IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	if got := PlainTextToHTML(""); got != "" {
		t.Errorf("empty: got %q", got)
	}

	got := PlainTextToHTML("Ligne 1\r\nLigne 2 & <b>3</b>")
	want := "<p>Ligne 1<br>Ligne 2 &amp; &lt;b&gt;3&lt;/b&gt;</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrepareForDisplay(t *testing.T) {
	if got := PrepareForDisplay(""); got != "" {
		t.Errorf("empty: got %q", got)
	}

	plain := string(PrepareForDisplay("Bienvenue\nà Los Santos"))
	if plain != "<p>Bienvenue<br>à Los Santos</p>" {
		t.Errorf("plain text: got %q", plain)
	}

	rich := string(PrepareForDisplay(`<p>Gouverneur</p><script>x()</script>`))
	if !strings.Contains(rich, "<p>Gouverneur</p>") || strings.Contains(rich, "script") {
		t.Errorf("html: got %q", rich)
	}
}

func TestSanitizeToHTML(t *testing.T) {
	got := SanitizeToHTML(`<em>ok</em><img src=x onerror=y>`)
	if !strings.Contains(string(got), "<em>ok</em>") || strings.Contains(string(got), "onerror") {
		t.Errorf("got %q", got)
	}
}
