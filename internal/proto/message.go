package proto

import "strings"

// Leading tokens of every server-to-client line.
const (
	KindOK   = "OK"
	KindErr  = "ERR"
	KindInfo = "INFO"
	KindFrom = "FROM"
)

// Welcome is sent as soon as a connection is accepted.
const Welcome = "INFO Welcome! Please login: HELLO <name>"

// OK formats a success reply.
func OK(text string) string {
	return KindOK + " " + text
}

// Err formats an error reply.
func Err(text string) string {
	return KindErr + " " + text
}

// Info formats a server notification.
func Info(text string) string {
	return KindInfo + " " + text
}

// From formats a relayed chat line. Text is passed through untouched.
func From(sender, text string) string {
	return KindFrom + " " + sender + " " + text
}

// Kind returns the leading token of a server line, or "" for an empty line.
func Kind(line string) string {
	kind, _, _ := strings.Cut(line, " ")
	return kind
}
