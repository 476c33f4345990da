// Package platform detects the host the CLI runs on and discovers the
// commands used to talk to the editor app: an opener for URIs and the
// Android activity manager for waking the app. On Termux the Termux helpers
// are preferred over the desktop openers.
package platform
