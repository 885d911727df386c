package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/dishes-service/services"
	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models/menu"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/utils/response"
)

// DeskByNumber
// @Summary Find a desk by its number
// @Tags menu
// @Produce json
// @Param number path int true "Desk number"
// @Success 200 {object} menu.Desk
// @Failure 404 {object} map[string]string
// @Router /api/desk/by-number/{number} [get]
func DeskByNumber(desks repositories.Store[menu.Desk], log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("number")
		number, err := strconv.Atoi(raw)
		notFound := apperr.New(apperr.NotFound, fmt.Sprintf("Desk with number %s does not exist.", raw))
		if err != nil || number < 0 {
			response.Error(c, resourceStatus, notFound, log)
			return
		}

		desk, err := desks.FindBy(c.Request.Context(), "desk_number", number)
		if apperr.KindOf(err) == apperr.NotFound {
			err = notFound
		}
		if err != nil {
			response.Error(c, resourceStatus, err, log)
			return
		}

		c.JSON(http.StatusOK, desk)
	}
}

// ARModelUploader stores AR models of dishes.
type ARModelUploader interface {
	Upload(ctx context.Context, dishID int64, file io.Reader, fileName string, size int64, contentType string) (*menu.Dish, error)
}

type ARModelHandler struct {
	models ARModelUploader
	log    zerolog.Logger
}

func NewARModelHandler(models ARModelUploader, log zerolog.Logger) *ARModelHandler {
	return &ARModelHandler{models: models, log: log}
}

// Upload
// @Summary Upload the AR model of a dish
// @Tags menu
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Param file formData file true "AR model (.glb, .gltf, .usdz, .obj)"
// @Success 200 {object} menu.Dish
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/dish/{id}/ar-model [post]
func (h *ARModelHandler) Upload(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, resourceStatus, apperr.New(apperr.NotFound, "Not found."), h.log)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	dish, err := h.models.Upload(c.Request.Context(), id, file, header.Filename, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, dish)
}

// Translated text fields per resource and operation.
var (
	DishListFields     services.Fields[menu.Dish]     = func(d *menu.Dish) []*string { return []*string{&d.DishName, &d.Description} }
	DishRetrieveFields services.Fields[menu.Dish]     = func(d *menu.Dish) []*string { return []*string{&d.DishName} }
	CategoryFields     services.Fields[menu.Category] = func(c *menu.Category) []*string { return []*string{&c.CategoryName} }
	GarnishFields      services.Fields[menu.Garnish]  = func(g *menu.Garnish) []*string { return []*string{&g.GarnishName} }
)
