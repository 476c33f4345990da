// Package activation hands actions to the Acode app.
//
// Delivery has two tiers. The wake tier starts the app's main activity,
// trying the primary package first and the free edition second. When the
// wake reports a cold start the handoff waits for a grace period so the app
// can register its URI handler. The handoff tier opens an
// acode://cli/<action>/<payload> URI through the platform opener and does
// not wait for any acknowledgement.
package activation
