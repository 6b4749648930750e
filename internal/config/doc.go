// Package config собирает параметры запуска: флаги, переменные окружения
// и batch-файл.
//
// Приоритет: флаг > batch-файл > переменная окружения > значение по умолчанию.
// Исключение — реквизиты сервера: SATELLITE_* заполняют только то,
// что не задано флагами.
package config
