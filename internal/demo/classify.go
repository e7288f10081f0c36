package demo

import "strings"

// classify maps an action-attempt error's text to a retry classification,
// per spec.md §4.6's exact substring rules.
func classify(err error) ErrorType {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "timeout") {
		return ErrorTimeout
	}
	if strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "context closed") ||
		strings.Contains(msg, "browser has been closed") {
		return ErrorTransientBrowser
	}
	if strings.Contains(msg, "net::") || strings.Contains(msg, "connection reset") {
		return ErrorTransientNetwork
	}
	return ErrorAction
}
