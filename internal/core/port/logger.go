package port

// Fields - структурированные поля записи лога.
type Fields map[string]interface{}

// LoggerPort - логгер, которым пользуются ядро и адаптеры.
// Куда уходят записи (терминал, Fluent Bit), решает сборка приложения.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error принимает err отдельно от полей; nil допустим.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields возвращает дочерний логгер, исходный не меняется.
	WithFields(fields Fields) LoggerPort
}
