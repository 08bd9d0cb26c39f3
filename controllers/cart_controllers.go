package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type CartController struct {
	DB   *gorm.DB
	Cart *services.CartService
}

func NewCartController(db *gorm.DB, cart *services.CartService) *CartController {
	return &CartController{DB: db, Cart: cart}
}

func (cc *CartController) respondCart(c *gin.Context, message string, cart map[uint]int) {
	lines, totals, err := cc.Cart.BuildCart(cart)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"items":  lines,
		"totals": totals,
	})
}

func (cc *CartController) Get(c *gin.Context) {
	cc.respondCart(c, "Cart contents", utils.GetCart(c))
}

func (cc *CartController) Count(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Cart count", gin.H{
		"count": services.CartCount(utils.GetCart(c)),
	})
}

func (cc *CartController) Add(c *gin.Context) {
	var input struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	cart := utils.GetCart(c)
	if _, err := cc.Cart.Add(cart, input.ProductID, input.Quantity); err != nil {
		cc.respondCartError(c, err)
		return
	}
	if err := utils.SaveCart(c, cart); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.respondCart(c, "Item added to cart", cart)
}

func (cc *CartController) Update(c *gin.Context) {
	var input struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart := utils.GetCart(c)
	if err := cc.Cart.Update(cart, input.ProductID, input.Quantity); err != nil {
		cc.respondCartError(c, err)
		return
	}
	if err := utils.SaveCart(c, cart); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.respondCart(c, "Cart updated", cart)
}

func (cc *CartController) Remove(c *gin.Context) {
	var input struct {
		ProductID uint `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart := utils.GetCart(c)
	cc.Cart.Remove(cart, input.ProductID)
	if err := utils.SaveCart(c, cart); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.respondCart(c, "Item removed", cart)
}

func (cc *CartController) Clear(c *gin.Context) {
	if err := utils.ClearCart(c); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}

func (cc *CartController) respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrInsufficientStock):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
