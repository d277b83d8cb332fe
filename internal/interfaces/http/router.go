package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/auth"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	CompanyUC  *usecase.CompanyUseCase
	StorageUC  *usecase.StorageUseCase
	ProductUC  *usecase.ProductUseCase
	SupplierUC *usecase.SupplierUseCase
	SupplyUC   *supply.SupplyUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.UserUC))

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", userHandler.Me)

	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)
	companies.Post("/:id/employees", companyHandler.AttachEmployee)

	storage := protected.Group("/storage")
	storageHandler := NewStorageHandler(deps.StorageUC)
	storage.Post("/", storageHandler.Create)
	storage.Get("/:id", storageHandler.GetByID)
	storage.Put("/:id", storageHandler.Update)
	storage.Delete("/:id", storageHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/movements", productHandler.ListMovements)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Supplies: cada mutación aplica o revierte stock
	supplies := protected.Group("/supplies")
	supplyHandler := NewSupplyHandler(deps.SupplyUC)
	supplies.Post("/", supplyHandler.Create)
	supplies.Get("/", supplyHandler.List)
	supplies.Get("/:id", supplyHandler.GetByID)
	supplies.Put("/:id", supplyHandler.Update)
	supplies.Delete("/:id", supplyHandler.Delete)
}
