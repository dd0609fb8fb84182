package handlers

import (
	"net/http"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type taskView struct {
	domain.Task
	Remaining string `json:"remaining"`
	Expired   bool   `json:"expired"`
}

func (h *Handler) view(t domain.Task, now time.Time) taskView {
	l := countdown.LabelFor(t, now, h.Location)
	return taskView{Task: t, Remaining: l.String(), Expired: l.Expired}
}

// ListTasks returns the board in display order with the current labels.
func (h *Handler) ListTasks(c *gin.Context) {
	now := h.now()
	tasks := h.Board.Snapshot()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, h.view(t, now))
	}
	done, total := h.Board.Stats()
	c.JSON(http.StatusOK, gin.H{
		"tasks": views,
		"done":  done,
		"total": total,
		"quote": h.Board.Quote(),
	})
}

func (h *Handler) CreateTask(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	task, err := h.Board.Add(c.Request.Context(), service.Answer(d.Text, d.Deadline))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(task, h.now()))
}

func (h *Handler) ToggleTask(c *gin.Context) {
	task, err := h.Board.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"task": h.view(task, h.now())}
	if task.Completed {
		resp["quote"] = h.Board.Quote()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) EditTask(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	task, err := h.Board.Edit(c.Request.Context(), c.Param("id"), service.Answer(d.Text, d.Deadline))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(task, h.now()))
}

// DeleteIntent issues the token that confirms a later DELETE of the same task.
func (h *Handler) DeleteIntent(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Board.Get(id); !ok {
		writeError(c, domain.ErrTaskNotFound)
		return
	}
	token, exp, err := h.Tokens.Issue(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id":    id,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
		"title":      "Are you sure?",
		"text":       "This task will be deleted permanently.",
	})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	err := h.Board.Delete(c.Request.Context(), id, h.Tokens.Confirmer(c.Query("confirm")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) Quote(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quote": h.Board.Quote()})
}

// Stats is the progress bar data.
func (h *Handler) Stats(c *gin.Context) {
	done, total := h.Board.Stats()
	percent := 0.0
	if total > 0 {
		percent = float64(done) * 100 / float64(total)
	}
	c.JSON(http.StatusOK, gin.H{"done": done, "total": total, "percent": percent})
}
