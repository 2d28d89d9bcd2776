// Package apperr описывает типизированные ошибки уровня сервисов.
//
// Каждая ошибка несёт Kind, по которому вызывающий код (HTTP-слой) выбирает
// статус ответа, не разбирая текст ошибки.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки.
type Kind uint8

const (
	// KindServerFault — ошибка базы данных или внутренняя ошибка.
	KindServerFault Kind = iota
	// KindValidation — некорректные входные данные.
	KindValidation
	// KindInvalidCredentials — неверный email или пароль.
	KindInvalidCredentials
	// KindMissingToken — отсутствует заголовок Authorization или он не вида "Bearer <token>".
	KindMissingToken
	// KindInvalidToken — подпись не прошла проверку, токен истёк или отозван.
	KindInvalidToken
	// KindUserNotFound — пользователь из токена удалён.
	KindUserNotFound
	// KindForbidden — недостаточно прав.
	KindForbidden
	// KindNotFound — запрошенная запись не найдена.
	KindNotFound
	// KindConflict — запись уже существует.
	KindConflict
)

var kindNames = map[Kind]string{
	KindServerFault:        "server_fault",
	KindValidation:         "validation",
	KindInvalidCredentials: "invalid_credentials",
	KindMissingToken:       "missing_token",
	KindInvalidToken:       "invalid_token",
	KindUserNotFound:       "user_not_found",
	KindForbidden:          "forbidden",
	KindNotFound:           "not_found",
	KindConflict:           "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error — ошибка с операцией, категорией и исходной причиной.
// Msg, если задан, можно показывать клиенту; Err — только в логах.
type Error struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

// E создаёт *Error. err может быть nil.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Msg создаёт *Error с публичным сообщением.
func Msg(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает категорию первой *Error в цепочке.
// Ошибки без категории считаются KindServerFault.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerFault
}

// MessageOf возвращает публичное сообщение первой *Error в цепочке
// или пустую строку.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

// Is сообщает, относится ли err к категории kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
