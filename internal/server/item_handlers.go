package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/mdouchement/grandmaster/internal/server/service"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

// item contains all item handlers.
type item struct {
	service *service.CollectionService
}

///// Create
////
//

// Create inserts one item.
func (h *item) Create(c echo.Context) error {
	var params gmset.Item
	if err := c.Bind(&params); err != nil {
		return gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidParams, "Could not get item params.")
	}

	items, err := h.service.Insert(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, items[0])
}

///// CreateBatch
////
//

// CreateBatch inserts all the given items or none of them.
func (h *item) CreateBatch(c echo.Context) error {
	var params []gmset.Item
	if err := c.Bind(&params); err != nil {
		return gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidParams, "Could not get items params.")
	}

	items, err := h.service.Insert(params...)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, items)
}

///// Update
////
//

// Update applies a partial update on the item.
func (h *item) Update(c echo.Context) error {
	var patch gmset.Patch
	if err := c.Bind(&patch); err != nil {
		message := "Could not get patch params."
		var herr *echo.HTTPError
		if errors.As(err, &herr) && herr.Internal != nil {
			message = errors.Cause(herr.Internal).Error()
		}
		return gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidParams, message)
	}

	item, err := h.service.Update(c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

///// Delete
////
//

// Delete removes the item.
func (h *item) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
