// Package notifier provides notification interfaces and implementations for changelog updates.
//
// The notifier package posts one message per update to a chat destination: a
// Discord-style webhook, a Telegram chat, or Twitter. A dry-run implementation
// prints messages instead of sending them.
package notifier
