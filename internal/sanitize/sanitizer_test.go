package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prohmpiriya/tenant-service/internal/dto"
)

func TestSanitizer_Tenant(t *testing.T) {
	s := New()
	req := &dto.TenantDTO{
		Name:      `Acme <script>alert(1)</script>& Co`,
		Subdomain: " ACME ",
		Theming: dto.ThemingDTO{
			Logo:         `https://cdn.example.com/logo.png`,
			PrimaryColor: `<b>#fff</b>`,
		},
		Content: dto.ContentDTO{
			Impressum: map[string]string{"DE": `<p onclick="x()">Hallo <strong>Welt</strong></p><script>bad()</script>`},
		},
		Settings: &dto.SettingsDTO{ActiveLanguages: []string{"DE", "<i>en</i>"}},
	}

	s.Tenant(req)

	assert.Equal(t, "Acme & Co", req.Name)
	assert.Equal(t, "acme", req.Subdomain)
	assert.Equal(t, "https://cdn.example.com/logo.png", req.Theming.Logo)
	assert.Equal(t, "#fff", req.Theming.PrimaryColor)
	assert.Equal(t, `<p>Hallo <strong>Welt</strong></p>`, req.Content.Impressum["de"])
	assert.Nil(t, req.Content.Privacy)
	assert.Equal(t, []string{"de", "en"}, req.Settings.ActiveLanguages)
}

func TestSanitizer_Text(t *testing.T) {
	s := New()
	assert.Equal(t, "plain", s.Text("plain"))
	assert.Equal(t, "", s.Text("<script>x</script>"))
	assert.Equal(t, "A & B", s.Text("A & B"))
	assert.Equal(t, "A & B", s.Text("A &amp; B"))
	assert.Equal(t, `O'Brien "Ltd"`, s.Text(`O'Brien "Ltd"`))
}

func TestSanitizer_EncodedMarkup(t *testing.T) {
	s := New()
	req := &dto.TenantDTO{
		Name:    `&lt;script&gt;alert(1)&lt;/script&gt;Acme`,
		Theming: dto.ThemingDTO{Logo: `&lt;img src=x onerror=alert(1)&gt;`},
	}

	s.Tenant(req)

	assert.Equal(t, "Acme", req.Name)
	assert.Equal(t, "", req.Theming.Logo)

	for _, in := range []string{
		`&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;`,
		`&amp;amp;lt;img src=x onerror=alert(1)&amp;amp;gt;`,
		`&#60;svg onload=alert(1)&#62;`,
	} {
		once := s.Text(in)
		twice := s.Text(once)
		for _, out := range []string{once, twice} {
			assert.NotContains(t, out, "<", "input %q", in)
			assert.NotContains(t, out, ">", "input %q", in)
		}
	}
}
