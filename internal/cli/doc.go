// Package cli реализует команды cvpromote.
//
// # Команды
//
//   - cvpromote [flags]          — то же, что run
//   - cvpromote run [flags]      — один batch: publish → ожидание → promote
//   - cvpromote schedule [flags] — batch по cron-расписанию
//
// Флаги run общие (PersistentFlags корневой команды), schedule добавляет
// --cron, --timezone, --listen, --lock-key.
//
// # Ключевые компоненты
//
// ## App
//
// Собирает зависимости процесса из config.Options: katello.Client,
// telemetry.Metrics, sinks событий (RabbitMQ, PostgreSQL) и
// orchestrator.Orchestrator. RunOnce выполняет batch, печатает итог
// и выгружает метрики (textfile, Pushgateway).
//
// ## Output
//
// Форматирование итога. Два режима:
//   - Таблица (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Итог выводится в stdout, логи — в stderr. Это позволяет использовать pipe:
// cvpromote run ... --json | jq .results
//
// Команды не завершают процесс сами: ошибка возвращается в main,
// который печатает "Error: ..." и выходит с кодом 1.
package cli
