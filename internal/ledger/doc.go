// Package ledger holds the balance-settlement state model of one session.
//
// A Session is the call surface a presentation layer drives: it owns the
// friend Registry, the interaction Mode (nothing open, the add-friend form
// open, or a friend selected for splitting) and the drafts of the two forms.
// Every operation runs to completion synchronously; a Session must not be
// used from more than one goroutine at a time.
package ledger
