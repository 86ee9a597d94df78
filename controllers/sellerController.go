package controllers

import (
	"net/http"

	"crm/models"
	"crm/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SellerController struct {
	sellers *services.SellerService
}

func NewSellerController(sellers *services.SellerService) *SellerController {
	return &SellerController{sellers: sellers}
}

func (ctl *SellerController) ListSellers(c *gin.Context) {
	sellers, err := ctl.sellers.ListSellers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sellers)
}

func (ctl *SellerController) CreateSeller(c *gin.Context) {
	var seller models.Seller
	if err := bindJSON(c, &seller); err != nil {
		_ = c.Error(err)
		return
	}
	created, err := ctl.sellers.CreateSeller(c.Request.Context(), seller)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (ctl *SellerController) GetSeller(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	seller, err := ctl.sellers.GetSeller(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

func (ctl *SellerController) UpdateSeller(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var details models.SellerDetails
	if err := bindJSON(c, &details); err != nil {
		_ = c.Error(err)
		return
	}
	seller, err := ctl.sellers.UpdateSeller(c.Request.Context(), id, details)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

func (ctl *SellerController) DeleteSeller(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := ctl.sellers.DeleteSeller(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *SellerController) GetBestPeriod(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	best, err := ctl.sellers.BestTransactionPeriod(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (ctl *SellerController) GetTopSeller(c *gin.Context) {
	period := c.Param("period")
	seller, err := ctl.sellers.TopSellerByPeriod(c.Request.Context(), period)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if seller == nil {
		_ = c.Error(models.NotFound("No transactions in the last %s", period))
		return
	}
	c.JSON(http.StatusOK, seller)
}

func (ctl *SellerController) GetSellersUnderAmount(c *gin.Context) {
	raw := c.Param("amount")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		_ = c.Error(models.InvalidArgument("Invalid amount: %s", raw))
		return
	}
	sellers, err := ctl.sellers.SellersUnderAmount(c.Request.Context(), amount, c.Param("period"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sellers)
}
