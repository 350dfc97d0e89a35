package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/mdouchement/grandmaster/internal/server/serializer"
	"github.com/mdouchement/grandmaster/internal/server/service"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

// collection contains all collection handlers.
type collection struct {
	db      database.Client
	service *service.CollectionService
}

///// Show
////
//

// Show renders the collection for the given code.
func (h *collection) Show(c echo.Context) error {
	m, err := h.db.FindCollection(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return gmerror.NotFound("collection not found")
		}
		return errors.Wrap(err, "could not get access to database")
	}

	return c.JSON(http.StatusOK, serializer.Collection(m))
}

///// Save
////
//

// Save creates or renames the collection for the given code.
func (h *collection) Save(c echo.Context) error {
	var params gmset.Collection
	if err := c.Bind(&params); err != nil {
		return gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidParams, "Could not get collection params.")
	}

	if params.ID != "" && params.ID != c.Param("id") {
		return gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagImmutableField, "Collection id mismatch.")
	}
	params.ID = c.Param("id")

	collection, err := h.service.SaveCollection(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, collection)
}

///// Items
////
//

// Items renders the items of the collection, ascending by creation date.
// An unknown collection has no items.
func (h *collection) Items(c echo.Context) error {
	items, err := h.db.FindItemsByCollectionID(c.Param("id"))
	if err != nil {
		return errors.Wrap(err, "could not get access to database")
	}

	return c.JSON(http.StatusOK, serializer.Items(items))
}
