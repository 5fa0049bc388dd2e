// Package ibce implements the Identity-Based Correlation Engine: it
// clusters evidence by normalized identity first, then groups each
// identity's evidence into temporal anchors, rather than sweeping the
// timeline at a fixed cadence the way twse does. It trades twse's uniform
// window cost for sensitivity to identities that recur in short, irregular
// bursts across a long timeline.
package ibce
