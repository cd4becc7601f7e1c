// Package telegram provides Telegram Bot API integration for sending changelog updates.
//
// The package sends formatted messages via the Bot API sendMessage method using
// simple HTTP requests. Authentication requires a bot token (from @BotFather) and
// a chat ID.
package telegram
