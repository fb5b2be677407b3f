package engine

// IsNewQuery reports whether the last query of the list just arrived, i.e.
// it carries an outcome and matches the most recently submitted message.
// The comparison is message-text based because the placeholder id and the
// final server id differ; the message is the only stable anchor across the
// substitution. Two consecutive identical messages can therefore mis-flag.
func IsNewQuery(queries []*Query, lastSubmittedMessage string) bool {
	if len(queries) == 0 || lastSubmittedMessage == "" {
		return false
	}
	last := queries[len(queries)-1]
	if last.Response == "" && last.Status != QueryStatusFailed {
		return false
	}
	return last.Message == lastSubmittedMessage
}
