// Package notifier announces an update by rewriting a channel's pinned message.
//
// # Flow
//
// Announce looks up the target chat, extracts the pinned message id and edits
// that message with the composed announcement. Each Bot API call is made once;
// there is no retry.
//
// # Missing pinned message
//
// A chat without a pinned message is an explicit, named failure
// (telegram.ErrNoPinnedMessage). With the "fail" policy it is returned to the
// caller and the edit is never attempted; with the "send" policy a new message
// is posted instead so a fresh channel can be bootstrapped.
//
// # Concurrency
//
// Two runs at the same time both edit the same pinned message and the last
// edit wins. Nothing here coordinates them.
package notifier
