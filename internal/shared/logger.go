package shared

// NopLogger discards everything. Library packages fall back to it when no logger is injected.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})    {}
func (NopLogger) Warning(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{})   {}
func (NopLogger) Debug(string, ...interface{})   {}
func (NopLogger) Success(string, ...interface{}) {}
func (NopLogger) SetDebugMode(bool)              {}
