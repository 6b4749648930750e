package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrContentViewNotFound — по имени не найдено ни одного content view.
	ErrContentViewNotFound = errors.New("content view not found")

	// ErrContentViewAmbiguous — по имени найдено несколько content views.
	ErrContentViewAmbiguous = errors.New("content view name is ambiguous")

	// ErrEnvironmentNotFound — окружение с таким именем не найдено.
	ErrEnvironmentNotFound = errors.New("lifecycle environment not found")

	// ErrEnvironmentAmbiguous — найдено несколько окружений с таким именем.
	ErrEnvironmentAmbiguous = errors.New("lifecycle environment name is ambiguous")

	// ErrPublishFailed — последнее событие content view завершилось ошибкой.
	ErrPublishFailed = errors.New("content view event failed")

	// ErrPromotionFailed — задача продвижения завершилась ошибкой.
	ErrPromotionFailed = errors.New("promotion task failed")

	// ErrMissingTask — ответ на продвижение не содержит id задачи.
	ErrMissingTask = errors.New("promote response has no task id")

	// ErrMissingVersion — ответ на публикацию не содержит id версии.
	ErrMissingVersion = errors.New("publish response has no version id")

	// ErrNoContentViews — не передано ни одного content view.
	ErrNoContentViews = errors.New("no content views given")

	// ErrNoEnvironments — не выбраны окружения для продвижения.
	ErrNoEnvironments = errors.New("no lifecycle environments given")
)
