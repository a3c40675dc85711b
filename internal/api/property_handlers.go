package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"haldoor-backend/internal/assets"
	"haldoor-backend/internal/auth"
	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

// Maximum upload size for property images (10MB)
const maxImageSize = 10 * 1024 * 1024

var (
	propertyRepo *database.PropertyRepo
	assetManager *assets.Manager
)

// InitPropertyHandlers initializes the property repository and asset manager
func InitPropertyHandlers(mgr *assets.Manager) {
	propertyRepo = database.NewPropertyRepo()
	assetManager = mgr
}

// storeImageFromForm stores an uploaded image file if one was attached.
// Returns the empty string when the form has no image field.
func storeImageFromForm(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// Missing file field or no multipart body: no image attached
		return "", nil
	}
	if file.Size > maxImageSize {
		return "", errors.New("image exceeds maximum size")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return assetManager.Store(src, file.Filename)
}

// addPropertyHandler handles POST /api/enter/add
func addPropertyHandler(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	location := strings.TrimSpace(c.FormValue("location"))
	priceStr := c.FormValue("price")

	if title == "" || description == "" || location == "" || priceStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "title, description, location and price are required",
		})
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "price must be a non-negative number",
		})
	}

	image, err := storeImageFromForm(c)
	if err != nil {
		c.Logger().Error("store image error: ", err)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "failed to store image",
		})
	}

	property := &models.Property{
		Title:       title,
		Description: description,
		Location:    location,
		Price:       price,
		Image:       image,
		OwnerID:     auth.CallerID(c),
	}

	if err := propertyRepo.Create(property); err != nil {
		// The record was not inserted, so the stored image is orphaned
		assetManager.Delete(image)
		c.Logger().Error("create property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create property",
		})
	}

	created, err := propertyRepo.GetByID(property.ID)
	if err != nil {
		c.Logger().Error("load property error: ", err)
		return c.JSON(http.StatusCreated, property)
	}
	return c.JSON(http.StatusCreated, created)
}

// listPropertiesHandler handles GET /api/enter/all
func listPropertiesHandler(c echo.Context) error {
	properties, err := propertyRepo.List()
	if err != nil {
		c.Logger().Error("list properties error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list properties",
		})
	}

	return c.JSON(http.StatusOK, properties)
}

// getPropertyHandler handles GET /api/enter/:id
func getPropertyHandler(c echo.Context) error {
	property, err := propertyRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		}
		c.Logger().Error("get property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load property",
		})
	}

	return c.JSON(http.StatusOK, property)
}

// canManageProperty reports whether the caller owns the property or holds
// the admin role right now (live role lookup, not the token claim)
func canManageProperty(c echo.Context, p *models.Property) bool {
	callerID := auth.CallerID(c)
	if p.OwnerID == callerID {
		return true
	}
	role, err := userRepo.GetRole(callerID)
	return err == nil && role == models.RoleAdmin
}

// updatePropertyHandler handles PATCH /api/enter/update/:id
func updatePropertyHandler(c echo.Context) error {
	id := c.Param("id")

	property, err := propertyRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		}
		c.Logger().Error("get property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load property",
		})
	}

	if !canManageProperty(c, property) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "only the owner or an admin can update this property",
		})
	}

	patch := models.PropertyPatch{}
	if v := c.FormValue("title"); v != "" {
		v := strings.TrimSpace(v)
		patch.Title = &v
	}
	if v := c.FormValue("description"); v != "" {
		v := strings.TrimSpace(v)
		patch.Description = &v
	}
	if v := c.FormValue("location"); v != "" {
		v := strings.TrimSpace(v)
		patch.Location = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "price must be a non-negative number",
			})
		}
		patch.Price = &price
	}

	// A new image replaces the old asset; deletion of the old file is
	// best-effort
	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.Logger().Error("open upload error: ", err)
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "failed to read image",
			})
		}
		defer src.Close()

		if file.Size > maxImageSize {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "image exceeds maximum size",
			})
		}

		newRef, err := assetManager.Replace(property.Image, src, file.Filename)
		if err != nil {
			c.Logger().Error("replace image error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to store image",
			})
		}
		patch.Image = &newRef
	}

	if err := propertyRepo.Update(id, patch); err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		}
		c.Logger().Error("update property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update property",
		})
	}

	updated, err := propertyRepo.GetByID(id)
	if err != nil {
		c.Logger().Error("load property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load property",
		})
	}
	return c.JSON(http.StatusOK, updated)
}

// deletePropertyHandler handles DELETE /api/enter/:id
func deletePropertyHandler(c echo.Context) error {
	id := c.Param("id")

	property, err := propertyRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		}
		c.Logger().Error("get property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load property",
		})
	}

	if !canManageProperty(c, property) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "only the owner or an admin can delete this property",
		})
	}

	if err := propertyRepo.Delete(id); err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		}
		c.Logger().Error("delete property error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete property",
		})
	}

	// Release the asset once the record is gone
	assetManager.Delete(property.Image)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "property deleted successfully",
	})
}

// purchasePropertyHandler handles POST /api/enter/purchase/:id
// The buyer is always the authenticated caller.
func purchasePropertyHandler(c echo.Context) error {
	id := c.Param("id")
	buyerID := auth.CallerID(c)

	property, err := propertyRepo.Purchase(id, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrPropertyNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "property not found",
			})
		case errors.Is(err, database.ErrAlreadySold):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "property is already sold",
			})
		case errors.Is(err, database.ErrSelfPurchase):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "you already own this property",
			})
		default:
			c.Logger().Error("purchase error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to process purchase",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "property purchased successfully",
		"property": property,
	})
}
