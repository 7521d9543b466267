package handler

import (
	"net/http"
	"slices"

	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type menuItem struct {
	ID    int    `json:"_id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// Menu returns the dashboard navigation items. Admins get the user
// management entry spliced in before settings.
func (h *DashboardHandler) Menu(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	items := []menuItem{
		{ID: 1, Name: "home", Title: "Home", Icon: "large home"},
		{ID: 2, Name: "messages", Title: "Messages", Icon: "comment layout"},
		{ID: 3, Name: "rooms", Title: "Rooms", Icon: "cube layout"},
		{ID: 5, Name: "settings", Title: "Settings", Icon: "setting"},
		{ID: 6, Name: "logout", Title: "Sign out", Icon: "sign out"},
	}
	if user.IsSuperuser {
		items = slices.Insert(items, 3, menuItem{ID: 4, Name: "users", Title: "Users", Icon: "users"})
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"items":  items,
	})
}
