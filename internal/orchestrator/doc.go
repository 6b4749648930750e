// Package orchestrator публикует content views и продвигает новые версии
// по lifecycle environments.
//
// Orchestrator отвечает за:
//   - Резолв всех content views (и явных окружений) до первой публикации
//   - Публикацию новой версии каждого content view по порядку
//   - Ожидание завершения публикации (Poller)
//   - Последовательное продвижение версии по окружениям, минуя Library
//
// Всё выполняется строго последовательно: первая ошибка прерывает весь batch,
// уже продвинутые версии не откатываются.
//
// С сервером пакет общается только через интерфейс API (Get/Post),
// реализованный katello.Client.
package orchestrator
