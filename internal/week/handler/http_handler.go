package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	filmhandler "github.com/narwhalmedia/wrongopinions/internal/film/handler"
	musichandler "github.com/narwhalmedia/wrongopinions/internal/music/handler"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/repository"
	"github.com/narwhalmedia/wrongopinions/internal/week/service"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/middleware"
	"github.com/narwhalmedia/wrongopinions/pkg/pagination"
)

// HTTPHandler serves the week and selection endpoints.
type HTTPHandler struct {
	manager *service.WeekManager
	images  filmhandler.Images
}

// NewHTTPHandler creates a new week handler.
func NewHTTPHandler(manager *service.WeekManager, images filmhandler.Images) *HTTPHandler {
	return &HTTPHandler{
		manager: manager,
		images:  images,
	}
}

// RegisterRoutes mounts the week routes and the selection listings on an
// authenticated group.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	weeks := rg.Group("/weeks")
	weeks.GET("", h.list)
	weeks.POST("", h.create)
	weeks.GET("/current", h.current)
	weeks.GET("/:id", h.get)
	weeks.PATCH("/:id", h.update)
	weeks.DELETE("/:id", h.delete)
	weeks.POST("/:id/movies", h.addMovie)
	weeks.DELETE("/:id/movies/:position", h.removeMovie)
	weeks.POST("/:id/albums", h.addAlbum)
	weeks.DELETE("/:id/albums/:position", h.removeAlbum)

	rg.GET("/movies/selections", h.movieSelections)
	rg.GET("/albums/selections", h.albumSelections)
}

// CreateWeekRequest is the body of POST /api/weeks.
type CreateWeekRequest struct {
	Year       int     `json:"year" binding:"required,gte=1900,lte=2100"`
	WeekNumber int     `json:"week_number" binding:"required,gte=1,lte=53"`
	Notes      *string `json:"notes"`
}

// UpdateWeekRequest is the body of PATCH /api/weeks/:id.
type UpdateWeekRequest struct {
	Notes *string `json:"notes"`
}

// AddMovieRequest is the body of POST /api/weeks/:id/movies.
type AddMovieRequest struct {
	TMDBID   int `json:"tmdb_id" binding:"required"`
	Position int `json:"position"`
}

// AddAlbumRequest is the body of POST /api/weeks/:id/albums.
type AddAlbumRequest struct {
	MusicBrainzID string `json:"musicbrainz_id" binding:"required"`
	Position      int    `json:"position"`
}

func invalidBody(err error) error {
	return errors.Wrap(errors.ErrorTypeBadRequest, "Invalid request body", err)
}

func weekIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Unparseable ids can never name a week.
		_ = c.Error(errors.NotFound("Week not found"))
		return uuid.Nil, false
	}
	return id, true
}

func positionParam(c *gin.Context) (int, bool) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		_ = c.Error(errors.BadRequest("Position must be 1 or 2"))
		return 0, false
	}
	return position, true
}

// list handles GET /api/weeks
func (h *HTTPHandler) list(c *gin.Context) {
	params, err := pagination.FromQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var filter repository.ListFilter
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(errors.BadRequest("year must be an integer"))
			return
		}
		filter.Year = &year
	}
	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			_ = c.Error(errors.BadRequest("owner_id must be a UUID"))
			return
		}
		filter.OwnerID = &ownerID
	}

	page, err := h.manager.List(c.Request.Context(), filter, params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(page, func(w domain.Week) WeekSummary {
		return newWeekSummary(&w)
	}))
}

// create handles POST /api/weeks
func (h *HTTPHandler) create(c *gin.Context) {
	var req CreateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}

	week, err := h.manager.Create(c.Request.Context(), middleware.Principal(c), req.Year, req.WeekNumber, req.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, newWeekView(week, h.images))
}

// current handles GET /api/weeks/current
func (h *HTTPHandler) current(c *gin.Context) {
	week, _, err := h.manager.GetOrCreateCurrent(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newWeekView(week, h.images))
}

// get handles GET /api/weeks/:id
func (h *HTTPHandler) get(c *gin.Context) {
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	week, err := h.manager.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newWeekView(week, h.images))
}

// update handles PATCH /api/weeks/:id
func (h *HTTPHandler) update(c *gin.Context) {
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	var req UpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}

	week, err := h.manager.Update(c.Request.Context(), middleware.Principal(c), id, req.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newWeekView(week, h.images))
}

// delete handles DELETE /api/weeks/:id
func (h *HTTPHandler) delete(c *gin.Context) {
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	if err := h.manager.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// addMovie handles POST /api/weeks/:id/movies
func (h *HTTPHandler) addMovie(c *gin.Context) {
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	var req AddMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}

	h.addSlot(c, id, domain.SlotFilm, strconv.Itoa(req.TMDBID), req.Position)
}

// addAlbum handles POST /api/weeks/:id/albums
func (h *HTTPHandler) addAlbum(c *gin.Context) {
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	var req AddAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}

	h.addSlot(c, id, domain.SlotRelease, req.MusicBrainzID, req.Position)
}

func (h *HTTPHandler) addSlot(c *gin.Context, id uuid.UUID, kind domain.SlotKind, key string, position int) {
	week, err := h.manager.AddSlot(c.Request.Context(), middleware.Principal(c), id, kind, key, position)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, newWeekView(week, h.images))
}

// removeMovie handles DELETE /api/weeks/:id/movies/:position
func (h *HTTPHandler) removeMovie(c *gin.Context) {
	h.removeSlot(c, domain.SlotFilm)
}

// removeAlbum handles DELETE /api/weeks/:id/albums/:position
func (h *HTTPHandler) removeAlbum(c *gin.Context) {
	h.removeSlot(c, domain.SlotRelease)
}

func (h *HTTPHandler) removeSlot(c *gin.Context, kind domain.SlotKind) {
	position, ok := positionParam(c)
	if !ok {
		return
	}
	id, ok := weekIDParam(c)
	if !ok {
		return
	}

	if err := h.manager.RemoveSlot(c.Request.Context(), middleware.Principal(c), id, kind, position); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// movieSelections handles GET /api/movies/selections
func (h *HTTPHandler) movieSelections(c *gin.Context) {
	params, err := pagination.FromQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.manager.ListFilmSelections(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(page, func(s repository.FilmSelections) SelectedMovieView {
		return SelectedMovieView{
			FilmView:   filmhandler.NewFilmView(&s.Film, h.images),
			Selections: newSelectionViews(s.Selections),
		}
	}))
}

// albumSelections handles GET /api/albums/selections
func (h *HTTPHandler) albumSelections(c *gin.Context) {
	params, err := pagination.FromQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.manager.ListReleaseSelections(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(page, func(s repository.ReleaseSelections) SelectedAlbumView {
		return SelectedAlbumView{
			AlbumView:  musichandler.NewAlbumView(&s.Release),
			Selections: newSelectionViews(s.Selections),
		}
	}))
}
