package controllers

import (
	"net/http"

	"crm/models"
	"crm/services"

	"github.com/gin-gonic/gin"
)

type TransactionController struct {
	transactions *services.TransactionService
}

func NewTransactionController(transactions *services.TransactionService) *TransactionController {
	return &TransactionController{transactions: transactions}
}

func (ctl *TransactionController) ListTransactions(c *gin.Context) {
	txs, err := ctl.transactions.ListTransactions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (ctl *TransactionController) CreateTransaction(c *gin.Context) {
	var tx models.Transaction
	if err := bindJSON(c, &tx); err != nil {
		_ = c.Error(err)
		return
	}
	created, err := ctl.transactions.CreateTransaction(c.Request.Context(), tx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (ctl *TransactionController) GetTransaction(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	tx, err := ctl.transactions.GetTransaction(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (ctl *TransactionController) ListBySeller(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	txs, err := ctl.transactions.ListBySeller(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
