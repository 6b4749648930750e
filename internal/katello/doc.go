// Package katello — HTTP-клиент для Katello API (Satellite 6).
//
// Клиент умеет только два вызова: Get и Post. Оба:
//   - используют basic auth и проверку TLS-сертификатов
//   - отправляют Accept: application/json,version=2
//   - разбирают ответ как JSON-объект (gjson.Result)
//   - превращают поле error верхнего уровня в *APIError, независимо от HTTP-кода
//
// Retry нет: любая ошибка возвращается вызывающему, который прерывает run.
//
//	client, err := katello.New(katello.Config{
//	    Server:   "satellite.example.com",
//	    User:     "admin",
//	    Password: "secret",
//	})
//	res, err := client.Get(ctx, "content_views", url.Values{"search": {`name="app"`}})
package katello
