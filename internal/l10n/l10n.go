// Package l10n looks up the user-visible strings shown on notifications.
package l10n

// Catalog keys.
const (
	DownloadFinished = "download_finished"
	OpenFolder       = "open_folder"
	OpenFile         = "open_file"
	Folder           = "folder" // short label for narrow Plasma buttons
	File             = "file"
)

var english = map[string]string{
	DownloadFinished: "Download finished",
	OpenFolder:       "Open folder",
	OpenFile:         "Open file",
	Folder:           "Folder",
	File:             "File",
}

// Catalog resolves keys to localized strings.
type Catalog struct {
	strings map[string]string
}

// New returns the English catalog with overrides applied on top.
// Empty overrides are ignored.
func New(overrides map[string]string) *Catalog {
	m := make(map[string]string, len(english)+len(overrides))
	for k, v := range english {
		m[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			m[k] = v
		}
	}
	return &Catalog{strings: m}
}

// Get returns the string for key, or key itself when unknown.
func (c *Catalog) Get(key string) string {
	if c == nil {
		return english[key]
	}
	if s, ok := c.strings[key]; ok {
		return s
	}
	return key
}
