package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/view/pagination"

	"github.com/gin-gonic/gin"
)

// onEachSide is the number of pages shown either side of the current one.
const onEachSide = 3

var usersPage = template.Must(template.New("users").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Users</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bulma@1.0.2/css/bulma.min.css">
</head>
<body>
<section class="section">
    <div class="container">
        <h1 class="title">Users</h1>
        <p class="subtitle">{{.Total}} accounts</p>
        <table class="table is-fullwidth is-striped">
            <thead>
                <tr><th>Email</th><th>Username</th><th>Status</th><th>Last login</th></tr>
            </thead>
            <tbody>
{{- range .Users}}
                <tr>
                    <td>{{.Email}}</td>
                    <td>{{.Username}}</td>
                    <td>{{.Status}}</td>
                    <td>{{if .LastLoginAt.IsZero}}never{{else}}{{.LastLoginAt.UTC.Format "2006-01-02 15:04"}}{{end}}</td>
                </tr>
{{- end}}
            </tbody>
        </table>
        {{.Pagination}}
    </div>
</section>
</body>
</html>
`))

type usersView struct {
	Total      int
	Users      []*user.User
	Pagination template.HTML
}

// Users renders one page of the user directory. Only admins reach it.
func (h *Handler) Users(c *gin.Context) {
	ctx := c.Request.Context()

	current, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		current = 1
	}

	total, err := h.users.Count(ctx)
	if err != nil {
		renderError(c, err)
		return
	}

	page := pagination.NewPage(total, h.settings.PerPage, current, c.Request.URL.Path)

	users, err := h.users.List(ctx, page.PerPage, page.Offset())
	if err != nil {
		renderError(c, err)
		return
	}

	nav, err := pagination.HTML(page, pagination.Window(page, onEachSide))
	if err != nil {
		renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "users", usersView{
		Total:      total,
		Users:      users,
		Pagination: nav,
	})
}

func renderError(c *gin.Context, err error) {
	logger.Error("users page failed", map[string]any{
		"error": err.Error(),
	})
	c.String(http.StatusInternalServerError, "internal error")
}
