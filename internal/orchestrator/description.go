package orchestrator

import (
	"fmt"
	"time"
)

// Метки в описаниях версий, по которым видно, что их создал cvpromote.
const (
	publishTag = "automated publish"
	promoteTag = "automated promotion"

	dateLayout = "2006-01-02"
)

// FormatDate возвращает дату run в формате описаний.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// PublishDescription — описание новой версии.
func PublishDescription(date string) string {
	return fmt.Sprintf("%s %s", date, publishTag)
}

// PromoteDescription — описание продвижения в окружение.
func PromoteDescription(date, environment string) string {
	return fmt.Sprintf("%s %s to %s", date, promoteTag, environment)
}
