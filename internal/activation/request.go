package activation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/7HR4IZ3/acode-cli/internal/branding"
)

// Action is what the app is asked to do with the payload.
type Action string

const (
	ActionOpenFile   Action = "open-file"
	ActionOpenFolder Action = "open-folder"
	ActionInstall    Action = "install"
	ActionEnable     Action = "enable"
	ActionDisable    Action = "disable"
	ActionUninstall  Action = "uninstall"
)

// ErrInvalidRequest is returned for an unknown action or an empty payload.
var ErrInvalidRequest = errors.New("invalid activation request")

// AllActions returns every supported action.
func AllActions() []Action {
	return []Action{ActionOpenFile, ActionOpenFolder, ActionInstall, ActionEnable, ActionDisable, ActionUninstall}
}

// ParseAction converts a string to an Action, returning false if invalid.
func ParseAction(s string) (Action, bool) {
	for _, a := range AllActions() {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Request is a single action for the app. Payload is a resolved filesystem
// path or a plugin id, depending on the action.
type Request struct {
	Action  Action
	Payload string
}

// Validate checks the action and payload.
func (r Request) Validate() error {
	if _, ok := ParseAction(string(r.Action)); !ok {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, r.Action)
	}
	if r.Payload == "" {
		return fmt.Errorf("%w: %s needs a payload", ErrInvalidRequest, r.Action)
	}
	return nil
}

// URI renders the request as acode://cli/<action>/<payload>.
func (r Request) URI() string {
	return fmt.Sprintf("%s://cli/%s/%s", branding.URIScheme(), r.Action, EncodeComponent(r.Payload))
}

func (r Request) String() string {
	return string(r.Action) + " " + r.Payload
}

// componentUnescape restores the characters URI components leave literal
// but url.QueryEscape encodes.
var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s as a single URI path component. Only
// letters, digits and -_.!~*'() stay literal, so "/" and spaces are encoded.
func EncodeComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}
