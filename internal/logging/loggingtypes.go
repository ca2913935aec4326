package logging

// GetLogType creates a key/value slice which can be passed to the Log* functions.
// It takes up to 2 arguments: subtype and sessionId; empty values are skipped.
func GetLogType(logType ...string) []any {
	keys := []string{"subType", "sessionId"}

	temp := make([]any, 0, 2*len(logType))
	for i, v := range logType {
		if i >= len(keys) {
			break
		}
		if len(v) <= 0 {
			continue
		}
		temp = append(temp, keys[i], v)
	}
	return temp
}

func GetLogTypeInitialization() []any {
	return GetLogType("initialization")
}

func GetLogTypeJanitor() []any {
	return GetLogType("janitor")
}

// GetLogTypeSession tags a log entry with the workflow step and the session it belongs to.
func GetLogTypeSession(step string, sessionId string) []any {
	return GetLogType(step, sessionId)
}
