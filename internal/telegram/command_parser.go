package telegram

import (
	"strings"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

// ParseCommand разбирает "/cmd@bot аргументы". Для обычного текста command
// пустой, а args - сам текст без крайних пробелов.
func ParseCommand(text string) (command, args string) {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	parts := strings.SplitN(text, " ", 2)
	command = strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}

	if len(parts) > 1 {
		args = normalizeSpaces(parts[1])
	}
	return command, args
}

// ParseModelArg - аргумент /model. Пустой аргумент значит "показать текущую".
func ParseModelArg(args string) (model deepseek.Model, set bool, err error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return deepseek.ModelChat, false, nil
	}
	model, err = deepseek.ParseModel(args)
	if err != nil {
		return deepseek.ModelChat, false, err
	}
	return model, true, nil
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
