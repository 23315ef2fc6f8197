package botkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseJSON разбирает аргументы команды вида /cmd {"key": "value"}.
func ParseJSON[T any](src string) (T, error) {
	var args T

	if err := json.Unmarshal([]byte(strings.TrimSpace(src)), &args); err != nil {
		return args, fmt.Errorf("parse command arguments: %w", err)
	}

	return args, nil
}

// ParsePosition разбирает номер новости, который видит пользователь (с единицы),
// и возвращает индекс в ленте (с нуля).
func ParsePosition(src string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(src))
	if err != nil {
		return 0, fmt.Errorf("parse position %q: %w", src, err)
	}

	return n - 1, nil
}
