// Package guard decides, per navigation, whether a page renders, waits for
// the session store, or redirects elsewhere.
//
// [Policy.Decide] is a pure function of (session.State, Requirement). Rules
// apply in order:
//
//  1. store loading or not yet hydrated  -> ShowLoading
//  2. no valid session, auth required     -> Redirect(login)
//  3. account kind mismatch               -> Redirect(landing of the session's kind)
//  4. role not in the required set        -> Redirect(default landing)
//  5. guest-only page, valid session      -> Redirect(landing of the session's kind)
//  6. otherwise                           -> Render
//
// A session that fails schema validation counts as no session.
//
// # What this package must NOT do
//
//   - Mutate or hold session state.
//   - Import dojoauth; it depends on package session only.
package guard
