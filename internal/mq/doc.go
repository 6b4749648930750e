// Package mq публикует события run в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очереди аудита и привязки
//   - publisher.go  — публикация событий
//
// Типы сообщений (routing key = тип):
//   - content_view.published — версия опубликована и публикация завершилась
//   - content_view.promoted  — версия продвинута в окружение
//
// Exchanges:
//   - cvpromote.events — topic exchange всех событий
package mq
