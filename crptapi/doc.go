/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package crptapi provides a rate-limited client for the CRPT document registration API.
//
// Every submission first tries to take one permit from a fixed-window permit pool
// (see package permit). If no permit is available, the submission is reported as rate limited
// immediately, without waiting and without any network call. Otherwise the payload is encoded
// and sent in a single HTTP request. The Client never retries; BatchSubmitter may be used
// to resubmit rate limited documents with a backoff policy.
package crptapi
