package opener

import (
	"reflect"
	"testing"
)

func TestOpener(t *testing.T) {
	tests := []struct {
		goos     string
		folder   bool
		wantName string
		wantArgs []string
	}{
		{goos: "linux", wantName: "xdg-open", wantArgs: []string{"/home/u/dl/a.zip"}},
		{goos: "linux", folder: true, wantName: "xdg-open", wantArgs: []string{"/home/u/dl"}},
		{goos: "darwin", wantName: "open", wantArgs: []string{"/home/u/dl/a.zip"}},
		{goos: "darwin", folder: true, wantName: "open", wantArgs: []string{"-R", "/home/u/dl/a.zip"}},
		{goos: "windows", wantName: "cmd", wantArgs: []string{"/C", "start", "", "/home/u/dl/a.zip"}},
		{goos: "windows", folder: true, wantName: "explorer", wantArgs: []string{"/select,/home/u/dl/a.zip"}},
	}

	for _, tt := range tests {
		var gotName string
		var gotArgs []string
		o := NewWith(tt.goos, func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		})

		var err error
		if tt.folder {
			err = o.OpenFolder("/home/u/dl/a.zip")
		} else {
			err = o.OpenFile("/home/u/dl/a.zip")
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.goos, err)
		}
		if gotName != tt.wantName || !reflect.DeepEqual(gotArgs, tt.wantArgs) {
			t.Errorf("%s folder=%v: ran %s %v, want %s %v",
				tt.goos, tt.folder, gotName, gotArgs, tt.wantName, tt.wantArgs)
		}
	}
}
