package queue

import "fmt"

// Kind — машинный код ошибки ядра очереди. Коды стабильны и
// транслируются слоем handlers в HTTP-статусы без изменения.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindCapacity        Kind = "CAPACITY_EXCEEDED"
	KindOutOfRange      Kind = "OUT_OF_RANGE"
	KindNoActiveEntries Kind = "NO_ACTIVE_ENTRIES"
	KindConflict        Kind = "CONFLICT"
	KindInternal        Kind = "DB_ERROR"
)

// Error — ошибка операций над очередью, классифицированная в точке
// обнаружения. Field заполняется для ошибок валидации.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func errNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func errValidation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func errCapacity(msg string) *Error {
	return &Error{Kind: KindCapacity, Message: msg}
}

func errOutOfRange(msg string) *Error {
	return &Error{Kind: KindOutOfRange, Message: msg}
}

func errNoActive() *Error {
	return &Error{Kind: KindNoActiveEntries, Message: "Нет активных записей в очереди"}
}

func errInternal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf возвращает код ошибки; для не наших ошибок — DB_ERROR.
func KindOf(err error) Kind {
	if qe, ok := err.(*Error); ok {
		return qe.Kind
	}
	return KindInternal
}
