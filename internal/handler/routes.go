package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/setorin/setorin-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, transactionHandler *TransactionHandler, balanceHandler *BalanceHandler, categoryHandler *CategoryHandler, receiptHandler *ReceiptHandler) {
	// API version 1
	api := e.Group("/api/v1")

	cash := api.Group("/cash")
	cash.Use(authMiddleware.Authenticate())

	// Mutations are rate limited per employee; reads are not
	limited := middleware.RateLimitMiddleware(rateLimiter)

	// Category catalog (read-only)
	cash.GET("/categories", categoryHandler.GetCategories)
	cash.GET("/categories/:id", categoryHandler.GetCategory)

	// Transactions
	cash.POST("/transactions", transactionHandler.CreateTransaction, limited)
	cash.GET("/transactions", transactionHandler.GetTransactions)
	cash.GET("/transactions/:id", transactionHandler.GetTransaction)
	cash.PUT("/transactions/:id", transactionHandler.UpdateTransaction, limited)
	cash.DELETE("/transactions/:id", transactionHandler.DeleteTransaction, limited)
	cash.POST("/transactions/:id/approve", transactionHandler.ApproveTransaction, limited)
	cash.POST("/transactions/:id/reject", transactionHandler.RejectTransaction, limited)

	// Receipts
	cash.POST("/transactions/:id/receipt", receiptHandler.UploadReceipt, limited)
	cash.GET("/transactions/:id/receipt", receiptHandler.GetReceiptURL)
	cash.DELETE("/transactions/:id/receipt", receiptHandler.DeleteReceipt, limited)

	// Balances and summaries
	cash.GET("/balances", balanceHandler.GetBalances)
	cash.GET("/balances/latest", balanceHandler.GetLatestBalance)
	cash.GET("/balances/:date", balanceHandler.GetBalanceByDate)
	cash.GET("/summary", balanceHandler.GetCategorySummary)
	cash.GET("/summary/monthly", balanceHandler.GetMonthlySummary)
}
