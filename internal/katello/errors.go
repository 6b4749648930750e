package katello

import (
	"errors"
	"fmt"
)

// Ошибки клиента.
var (
	// ErrTransport — сеть, TLS или протокол: ответа от сервера нет.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse — тело ответа не является JSON-объектом.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrAPI — сервер сообщил об ошибке приложения.
	ErrAPI = errors.New("api error")
)

// APIError — ошибка, которую вернул сервер в поле error
// (или HTTP-код >= 400 без тела с ошибкой).
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap позволяет проверять errors.Is(err, ErrAPI).
func (e *APIError) Unwrap() error {
	return ErrAPI
}

// outcome возвращает метку результата запроса для метрик.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAPI):
		return "api_error"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}
