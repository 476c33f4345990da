package activation

import (
	"errors"
	"net/url"
	"testing"
)

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/sdcard/project/main.js", "%2Fsdcard%2Fproject%2Fmain.js"},
		{"/home/u/My Plugin/dist.zip", "%2Fhome%2Fu%2FMy%20Plugin%2Fdist.zip"},
		{"a+b&c=d?e#f", "a%2Bb%26c%3Dd%3Fe%23f"},
		{"keep-_.!~*'()", "keep-_.!~*'()"},
		{"ü", "%C3%BC"},
		{"acode.plugin.prettier", "acode.plugin.prettier"},
	}
	for _, tt := range tests {
		got := EncodeComponent(tt.in)
		if got != tt.want {
			t.Errorf("EncodeComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := url.PathUnescape(got)
		if err != nil || back != tt.in {
			t.Errorf("PathUnescape(%q) = %q, %v; want %q", got, back, err, tt.in)
		}
	}
}

func TestRequest_URI(t *testing.T) {
	tests := []struct {
		req  Request
		want string
	}{
		{Request{ActionOpenFile, "/sdcard/a.js"}, "acode://cli/open-file/%2Fsdcard%2Fa.js"},
		{Request{ActionOpenFolder, "/sdcard/proj"}, "acode://cli/open-folder/%2Fsdcard%2Fproj"},
		{Request{ActionInstall, "/x/dist.zip"}, "acode://cli/install/%2Fx%2Fdist.zip"},
		{Request{ActionEnable, "my.plugin"}, "acode://cli/enable/my.plugin"},
		{Request{ActionDisable, "my.plugin"}, "acode://cli/disable/my.plugin"},
		{Request{ActionUninstall, "my plugin"}, "acode://cli/uninstall/my%20plugin"},
	}
	for _, tt := range tests {
		if got := tt.req.URI(); got != tt.want {
			t.Errorf("%s: URI() = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	if err := (Request{Action: ActionInstall, Payload: "/x"}).Validate(); err != nil {
		t.Errorf("valid request: %v", err)
	}
	if err := (Request{Action: "list", Payload: "/x"}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown action: err = %v", err)
	}
	if err := (Request{Action: ActionEnable}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty payload: err = %v", err)
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range AllActions() {
		if got, ok := ParseAction(string(a)); !ok || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, ok)
		}
	}
	if _, ok := ParseAction("open"); ok {
		t.Error("ParseAction(open) succeeded")
	}
}
