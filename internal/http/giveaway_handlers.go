package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"giveaway-bot/internal/domain/giveaway"
)

// GiveawayHandlers serves read-only giveaway snapshots.
type GiveawayHandlers struct {
	reader giveaway.Reader
}

func NewGiveawayHandlers(reader giveaway.Reader) *GiveawayHandlers {
	return &GiveawayHandlers{reader: reader}
}

func (h *GiveawayHandlers) Register(r gin.IRouter) {
	r.GET("/giveaways", h.list)
	r.GET("/giveaways/:id", h.getByID)
}

// GiveawayListResponse wraps a list of snapshots.
type GiveawayListResponse struct {
	Items []giveaway.Giveaway `json:"items"`
	Total int                 `json:"total"`
}

// list godoc
// @Summary      List giveaways
// @Description  Returns snapshots of every giveaway held in memory, oldest first.
// @Tags         giveaways
// @Produce      json
// @Param        guild_id  query     string  false  "Filter by guild"
// @Param        state     query     string  false  "Filter by state"  Enums(active, ended_success, ended_insufficient)
// @Success      200       {object}  GiveawayListResponse
// @Router       /giveaways [get]
func (h *GiveawayHandlers) list(c *gin.Context) {
	guildID := c.Query("guild_id")
	state := giveaway.State(c.Query("state"))

	items := make([]giveaway.Giveaway, 0)
	for _, g := range h.reader.List(c.Request.Context()) {
		if guildID != "" && g.GuildID != guildID {
			continue
		}
		if state != "" && g.State != state {
			continue
		}
		items = append(items, g)
	}
	c.JSON(nethttp.StatusOK, GiveawayListResponse{Items: items, Total: len(items)})
}

// getByID godoc
// @Summary      Get a giveaway
// @Description  Returns one giveaway by its announcement message ID.
// @Tags         giveaways
// @Produce      json
// @Param        id   path      string  true  "Giveaway ID"
// @Success      200  {object}  giveaway.Giveaway
// @Failure      404  {object}  middleware.ErrorResponse
// @Router       /giveaways/{id} [get]
func (h *GiveawayHandlers) getByID(c *gin.Context) {
	g, err := h.reader.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(giveaway.ToAppError(err))
		return
	}
	c.JSON(nethttp.StatusOK, g)
}
