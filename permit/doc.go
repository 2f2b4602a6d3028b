/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package permit provides a fixed-window permit pool that admits at most N operations per time window.
//
// Acquisition never blocks: a caller either gets a permit immediately or is denied.
// A single background goroutine owned by the pool resets the number of available permits
// to full capacity every window, so unused permits are never accumulated.
package permit
