package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

// RegisterVendorRequest represents the request body for vendor signup
type RegisterVendorRequest struct {
	Email        string            `json:"email" binding:"required,email"`
	Password     string            `json:"password" binding:"required,min=8"`
	BusinessName string            `json:"business_name" binding:"required"`
	Description  string            `json:"description"`
	PhoneNumber  string            `json:"phone_number"`
	Address      AddAddressRequest `json:"address" binding:"required"`
}

// EditVendorRequest is a typed patch for the vendor profile. Nil fields are
// left unchanged.
type EditVendorRequest struct {
	BusinessName *string            `json:"business_name"`
	Description  *string            `json:"description"`
	PhoneNumber  *string            `json:"phone_number"`
	Address      *AddAddressRequest `json:"address"`
}

// AddMenuItemRequest represents the request body for creating a menu item
type AddMenuItemRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	ModificationIDs []uint  `json:"modification_ids"`
}

// EditMenuItemRequest is a typed patch for a menu item. Nil fields are left
// unchanged.
type EditMenuItemRequest struct {
	MenuItemID      uint     `json:"menu_item_id" binding:"required"`
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	ModificationIDs *[]uint  `json:"modification_ids"`
}

// AddModificationRequest represents the request body for creating a
// modification set
type AddModificationRequest struct {
	Name               string                      `json:"name" binding:"required"`
	Type               models.ModificationType     `json:"type" binding:"required"`
	Options            []models.ModificationOption `json:"options" binding:"required,min=1"`
	DefaultOptionIndex *int                        `json:"default_option_index"`
}

// EditModificationRequest is a typed patch for a modification set
type EditModificationRequest struct {
	ModificationID     uint                         `json:"modification_id" binding:"required"`
	Name               *string                      `json:"name"`
	Type               *models.ModificationType     `json:"type"`
	Options            *[]models.ModificationOption `json:"options"`
	DefaultOptionIndex *int                         `json:"default_option_index"`
}

func (r *AddAddressRequest) toAddress() models.Address {
	return models.Address{
		Street:    r.Street,
		Unit:      r.Unit,
		City:      r.City,
		State:     r.State,
		Zip:       r.Zip,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Note:      r.Note,
	}
}

func attachImageURL(item *models.MenuItem) {
	if item.ImageS3Key == nil {
		return
	}
	if imageService := services.GetImageService(); imageService != nil {
		if url, err := imageService.GetImageURL(*item.ImageS3Key); err == nil && url != "" {
			item.ImageURL = &url
		}
	}
}

func attachLogoURL(vendor *models.Vendor) {
	if vendor.LogoS3Key == nil {
		return
	}
	if imageService := services.GetImageService(); imageService != nil {
		if url, err := imageService.GetImageURL(*vendor.LogoS3Key); err == nil && url != "" {
			vendor.LogoURL = &url
		}
	}
}

// RegisterVendor handles POST /vendors/register
func RegisterVendor(c *gin.Context) {
	var req RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var existing int64
	if err := db.Model(&models.Vendor{}).
		Where("email = ? OR business_name = ?", req.Email, req.BusinessName).
		Count(&existing).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterVendor"), "RegisterVendor")
		return
	}
	if existing > 0 {
		respondError(c, services.ErrValidation("Email or business name is already registered.").In("RegisterVendor"), "RegisterVendor")
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "RegisterVendor")
		return
	}

	vendor := models.Vendor{
		Email:        req.Email,
		Password:     hash,
		BusinessName: req.BusinessName,
		Description:  req.Description,
		PhoneNumber:  req.PhoneNumber,
	}
	address := req.Address.toAddress()
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&address).Error; err != nil {
			return err
		}
		vendor.AddressID = &address.ID
		return tx.Create(&vendor).Error
	}); err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterVendor"), "RegisterVendor")
		return
	}
	vendor.Address = &address

	sendConfirmationEmail(vendor.Email, services.RoleVendor, vendor.ID)

	token, err := services.GetAuthService().IssueSessionToken(vendor.ID, services.RoleVendor)
	if err != nil {
		respondError(c, err, "RegisterVendor")
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"token":     token,
		"profile":   vendor,
		"user_type": services.RoleVendor,
	})
}

// LoginVendor handles POST /vendors/login
func LoginVendor(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var vendor models.Vendor
	if err := db.Preload("Address").Where("email = ?", req.Email).First(&vendor).Error; err != nil {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginVendor"), "LoginVendor")
		return
	}
	if !vendor.ValidatePassword(req.Password) {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginVendor"), "LoginVendor")
		return
	}

	token, err := services.GetAuthService().IssueSessionToken(vendor.ID, services.RoleVendor)
	if err != nil {
		respondError(c, err, "LoginVendor")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token":     token,
		"profile":   vendor,
		"user_type": services.RoleVendor,
	})
}

// ConfirmVendorEmail handles GET /vendors/confirmEmail?token=...
func ConfirmVendorEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, services.ErrValidation("A confirmation token is required.").In("ConfirmVendorEmail"), "ConfirmVendorEmail")
		return
	}

	actorID, role, err := services.GetAuthService().VerifyEmailToken(token)
	if err != nil || role != services.RoleVendor {
		respondError(c, services.ErrUnauthorized("Invalid or expired confirmation token.").In("ConfirmVendorEmail"), "ConfirmVendorEmail")
		return
	}

	if err := config.GetDB().Model(&models.Vendor{}).Where("id = ?", actorID).
		Update("email_is_confirmed", true).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("ConfirmVendorEmail"), "ConfirmVendorEmail")
		return
	}

	respondData(c, http.StatusOK, gin.H{"email_is_confirmed": true})
}

// GetVendorProfile handles GET /vendors/me
func GetVendorProfile(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetVendorProfile"), "GetVendorProfile")
		return
	}

	db := config.GetDB()
	if err := db.Preload("Address").Preload("Menu.Modifications").Preload("Modifications").
		First(vendor, vendor.ID).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("GetVendorProfile"), "GetVendorProfile")
		return
	}
	attachLogoURL(vendor)
	for i := range vendor.Menu {
		attachImageURL(&vendor.Menu[i])
	}

	respondData(c, http.StatusOK, vendor)
}

// ListVendors handles GET /vendors - confirmed vendors for browsing
func ListVendors(c *gin.Context) {
	var vendors []models.Vendor
	if err := config.GetDB().Preload("Address").
		Where("email_is_confirmed = ?", true).
		Order("business_name ASC").Find(&vendors).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("ListVendors"), "ListVendors")
		return
	}
	for i := range vendors {
		attachLogoURL(&vendors[i])
	}
	respondData(c, http.StatusOK, vendors)
}

// GetVendor handles GET /vendors/:vendorId - a vendor's public profile and menu
func GetVendor(c *gin.Context) {
	vendorID, err := strconv.ParseUint(c.Param("vendorId"), 10, 64)
	if err != nil {
		respondError(c, services.ErrValidation("Vendor id must be a number.").In("GetVendor"), "GetVendor")
		return
	}

	var vendor models.Vendor
	if err := config.GetDB().Preload("Address").Preload("Menu.Modifications").
		First(&vendor, uint(vendorID)).Error; err != nil {
		respondError(c, services.ErrNotFound("Vendor not found.").In("GetVendor"), "GetVendor")
		return
	}
	attachLogoURL(&vendor)
	for i := range vendor.Menu {
		attachImageURL(&vendor.Menu[i])
	}

	respondData(c, http.StatusOK, vendor)
}

// EditVendor handles POST /vendors/editVendor
func EditVendor(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("EditVendor"), "EditVendor")
		return
	}

	var req EditVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	updates := map[string]interface{}{}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if req.Address != nil {
			address := req.Address.toAddress()
			if vendor.AddressID != nil {
				address.ID = *vendor.AddressID
				if err := tx.Save(&address).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Create(&address).Error; err != nil {
					return err
				}
				updates["address_id"] = address.ID
			}
			vendor.Address = &address
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(vendor).Updates(updates).Error
	}); err != nil {
		respondError(c, services.ErrDatabase(err).In("EditVendor"), "EditVendor")
		return
	}

	respondData(c, http.StatusOK, vendor)
}

// UploadVendorLogo handles POST /vendors/logo (multipart)
func UploadVendorLogo(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("UploadVendorLogo"), "UploadVendorLogo")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		respondError(c, services.ErrValidation("A logo file is required.").In("UploadVendorLogo"), "UploadVendorLogo")
		return
	}

	imageService := services.GetImageService()
	key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		respondError(c, services.ErrValidation(err.Error()).In("UploadVendorLogo"), "UploadVendorLogo")
		return
	}

	oldKey := vendor.LogoS3Key
	if err := config.GetDB().Model(vendor).Update("logo_s3_key", key).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("UploadVendorLogo"), "UploadVendorLogo")
		return
	}
	if oldKey != nil {
		imageService.DeleteImage(*oldKey)
	}
	vendor.LogoS3Key = &key
	attachLogoURL(vendor)

	respondData(c, http.StatusOK, vendor)
}

// AddMenuItem handles POST /vendors/addMenuItem
func AddMenuItem(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AddMenuItem"), "AddMenuItem")
		return
	}

	var req AddMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	modifications, err := vendorModifications(db, vendor.ID, req.ModificationIDs)
	if err != nil {
		respondError(c, err, "AddMenuItem")
		return
	}

	item := models.MenuItem{
		VendorID:      vendor.ID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Modifications: modifications,
	}
	if err := db.Create(&item).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("AddMenuItem"), "AddMenuItem")
		return
	}

	respondData(c, http.StatusCreated, item)
}

// vendorModifications resolves modification ids and checks they belong to
// the vendor
func vendorModifications(db *gorm.DB, vendorID uint, ids []uint) ([]models.Modification, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var modifications []models.Modification
	if err := db.Where("vendor_id = ? AND id IN ?", vendorID, ids).Find(&modifications).Error; err != nil {
		return nil, services.ErrDatabase(err)
	}
	if len(modifications) != len(ids) {
		return nil, services.ErrValidation("One or more modifications do not exist.")
	}
	return modifications, nil
}

// UploadMenuItemImage handles POST /vendors/menuItemImage/:menuItemId (multipart)
func UploadMenuItemImage(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}

	menuItemID, err := strconv.ParseUint(c.Param("menuItemId"), 10, 64)
	if err != nil {
		respondError(c, services.ErrValidation("Menu item id must be a number.").In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}

	db := config.GetDB()
	var item models.MenuItem
	if err := db.Where("vendor_id = ?", vendor.ID).First(&item, uint(menuItemID)).Error; err != nil {
		respondError(c, services.ErrNotFound("Menu item not found.").In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, services.ErrValidation("An image file is required.").In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}

	imageService := services.GetImageService()
	key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		respondError(c, services.ErrValidation(err.Error()).In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}

	oldKey := item.ImageS3Key
	if err := db.Model(&item).Update("image_s3_key", key).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("UploadMenuItemImage"), "UploadMenuItemImage")
		return
	}
	if oldKey != nil {
		imageService.DeleteImage(*oldKey)
	}
	item.ImageS3Key = &key
	attachImageURL(&item)

	respondData(c, http.StatusOK, item)
}

// EditMenuItem handles POST /vendors/editMenuItem
func EditMenuItem(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("EditMenuItem"), "EditMenuItem")
		return
	}

	var req EditMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var item models.MenuItem
	if err := db.Where("vendor_id = ?", vendor.ID).First(&item, req.MenuItemID).Error; err != nil {
		respondError(c, services.ErrNotFound("Menu item not found.").In("EditMenuItem"), "EditMenuItem")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			respondError(c, services.ErrValidation("Price must be positive.").In("EditMenuItem"), "EditMenuItem")
			return
		}
		updates["price"] = *req.Price
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.ModificationIDs != nil {
			modifications, err := vendorModifications(tx, vendor.ID, *req.ModificationIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&item).Association("Modifications").Replace(modifications); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		respondError(c, err, "EditMenuItem")
		return
	}

	if err := db.Preload("Modifications").First(&item, item.ID).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("EditMenuItem"), "EditMenuItem")
		return
	}
	attachImageURL(&item)

	respondData(c, http.StatusOK, item)
}

// RemoveMenuItem handles POST /vendors/removeMenuItem
func RemoveMenuItem(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RemoveMenuItem"), "RemoveMenuItem")
		return
	}

	var req struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var item models.MenuItem
	if err := db.Where("vendor_id = ?", vendor.ID).First(&item, req.MenuItemID).Error; err != nil {
		respondError(c, services.ErrNotFound("Menu item not found.").In("RemoveMenuItem"), "RemoveMenuItem")
		return
	}
	if err := db.Delete(&item).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RemoveMenuItem"), "RemoveMenuItem")
		return
	}

	respondData(c, http.StatusOK, gin.H{"removed": item.ID})
}

// AddModification handles POST /vendors/addModification
func AddModification(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AddModification"), "AddModification")
		return
	}

	var req AddModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if req.Type != models.SelectionSingle && req.Type != models.SelectionMultiple {
		respondError(c, services.ErrValidation("Type must be single or multiple.").In("AddModification"), "AddModification")
		return
	}
	if req.DefaultOptionIndex != nil &&
		(*req.DefaultOptionIndex < 0 || *req.DefaultOptionIndex >= len(req.Options)) {
		respondError(c, services.ErrValidation("Default option index is out of range.").In("AddModification"), "AddModification")
		return
	}

	modification := models.Modification{
		VendorID:           vendor.ID,
		Name:               req.Name,
		Type:               req.Type,
		Options:            req.Options,
		DefaultOptionIndex: req.DefaultOptionIndex,
	}
	if err := config.GetDB().Create(&modification).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("AddModification"), "AddModification")
		return
	}

	respondData(c, http.StatusCreated, modification)
}

// EditModification handles POST /vendors/editModification
func EditModification(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("EditModification"), "EditModification")
		return
	}

	var req EditModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var modification models.Modification
	if err := db.Where("vendor_id = ?", vendor.ID).First(&modification, req.ModificationID).Error; err != nil {
		respondError(c, services.ErrNotFound("Modification not found.").In("EditModification"), "EditModification")
		return
	}

	if req.Name != nil {
		modification.Name = *req.Name
	}
	if req.Type != nil {
		if *req.Type != models.SelectionSingle && *req.Type != models.SelectionMultiple {
			respondError(c, services.ErrValidation("Type must be single or multiple.").In("EditModification"), "EditModification")
			return
		}
		modification.Type = *req.Type
	}
	if req.Options != nil {
		modification.Options = *req.Options
	}
	if req.DefaultOptionIndex != nil {
		if *req.DefaultOptionIndex < 0 || *req.DefaultOptionIndex >= len(modification.Options) {
			respondError(c, services.ErrValidation("Default option index is out of range.").In("EditModification"), "EditModification")
			return
		}
		modification.DefaultOptionIndex = req.DefaultOptionIndex
	}

	if err := db.Save(&modification).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("EditModification"), "EditModification")
		return
	}

	respondData(c, http.StatusOK, modification)
}

// RemoveModification handles POST /vendors/removeModification
func RemoveModification(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RemoveModification"), "RemoveModification")
		return
	}

	var req struct {
		ModificationID uint `json:"modification_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var modification models.Modification
	if err := db.Where("vendor_id = ?", vendor.ID).First(&modification, req.ModificationID).Error; err != nil {
		respondError(c, services.ErrNotFound("Modification not found.").In("RemoveModification"), "RemoveModification")
		return
	}
	if err := db.Delete(&modification).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RemoveModification"), "RemoveModification")
		return
	}

	respondData(c, http.StatusOK, gin.H{"removed": modification.ID})
}
