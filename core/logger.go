package core

// Logger is any service that can report application events.
// args may hold an error, a map[string]interface{} of extra data, and the authenticated person.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
