package downloads

import "testing"

func TestExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"installer.EXE", "exe"},
		{"/home/u/Downloads/archive.tar.GZ", "gz"},
		{`C:\Users\u\Downloads\setup.Msi`, "msi"},
		{"/home/u/Downloads/README", ""},
		{"/home/u/dir.with.dots/README", ""},
		{`C:\dir.d\noext`, ""},
		{"trailing.", ""},
		{".bashrc", "bashrc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Extension(tt.path); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		exclusions []string
		want       bool
	}{
		{"excluded upper case file", "installer.EXE", []string{"exe", "tmp"}, false},
		{"excluded mixed case entry", "/dl/file.tmp", []string{"EXE", " Tmp "}, false},
		{"not excluded", "/dl/photo.jpg", []string{"exe", "tmp"}, true},
		{"empty list", "/dl/installer.exe", nil, true},
		{"no extension not matched", "/dl/README", []string{"exe"}, true},
		{"no extension matched by empty entry", "/dl/README", []string{"exe", ""}, false},
		{"empty entry does not match real extension", "/dl/a.zip", []string{""}, true},
		{"partial match is not a match", "/dl/a.exe2", []string{"exe"}, true},
		{"windows path", `C:\dl\Setup.EXE`, []string{"exe"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldNotify(tt.path, tt.exclusions); got != tt.want {
				t.Errorf("ShouldNotify(%q, %q) = %v, want %v", tt.path, tt.exclusions, got, tt.want)
			}
		})
	}
}

func TestIsPartial(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"/dl/movie.mkv.part", true},
		{"/dl/setup.exe.crdownload", true},
		{"/dl/x.TMP", true},
		{"/dl/.com.google.Chrome.abc", true},
		{"/dl/movie.mkv", false},
		{"/dl/partial.txt", false},
	}

	for _, tt := range tests {
		if got := IsPartial(tt.name); got != tt.want {
			t.Errorf("IsPartial(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
