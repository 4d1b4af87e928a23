package i18n

// RuMessages Russian message catalog
var RuMessages = map[string]string{
	"uptime.format": "%dд %dч %dм",

	"tab.status":    "Статус",
	"tab.tasks":     "Задачи",
	"tab.processes": "Процессы",
	"tab.skills":    "Навыки",

	"label.agent":       "Агент",
	"label.version":     "Версия",
	"label.uptime":      "Аптайм",
	"label.current":     "Текущая задача",
	"label.memory":      "Память",
	"label.tasks":       "Задачи",
	"label.completed":   "выполнено %d из %d",
	"label.none":        "нет",
	"label.source":      "источник: %s",
	"label.refreshed":   "обновлено %s",
	"label.empty":       "Пока пусто",
	"label.skill_type":  "навык: %s",
	"label.loading":     "Загрузка...",
	"label.no_manifest": "SKILL.md не найден",

	"help.keys": "tab/shift+tab вкладки · ↑/↓ выбор · enter открыть · r обновить · esc назад · q выход",
}
