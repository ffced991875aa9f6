// Package tdasync keeps a local transaction store in sync with the full
// transaction history of a brokerage account.
//
// The brokerage only answers queries for a date window, so the history is
// read month by month:
//   - Backward scan: when the store is empty, walk from the current month into
//     the past until DefaultMaxGap consecutive months are empty. The start of
//     an account history is unknown, a year without any transaction is taken
//     as the proof that it has been reached.
//   - Forward scan: when the store already holds transactions, walk from the
//     latest one up to the month containing now.
//
// Running a synchronization again resumes from the store state: a complete
// backward scan is never repeated, and a forward scan starts at the exact
// instant of the latest stored transaction. Sinks must therefore accept the
// same record twice.
//
// Brokerage access and storage are capabilities (Fetcher and Sink) provided
// by the tda and store packages.
package tdasync
