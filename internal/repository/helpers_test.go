package repository

import "todo_webapp/internal/domain"

func draft(text string) domain.Draft {
	return domain.Draft{Text: text, Deadline: "2030-01-01T09:00"}
}
