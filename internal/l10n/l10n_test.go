package l10n

import "testing"

func TestCatalog(t *testing.T) {
	c := New(map[string]string{
		DownloadFinished: "Téléchargement terminé",
		File:             "",
	})

	tests := []struct {
		key, want string
	}{
		{DownloadFinished, "Téléchargement terminé"},
		{File, "File"},
		{OpenFolder, "Open folder"},
		{"no_such_key", "no_such_key"},
	}
	for _, tt := range tests {
		if got := c.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if got := c.Get(Open); got != "Open" {
		t.Errorf("nil Catalog Get(Open) = %q, want Open", got)
	}
}
