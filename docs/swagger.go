// Package docs Restaurant API documentation
package docs

// Swagger documentation info
// @title Restaurant API
// @version 1.0
// @description Menu, order and invoice API of the restaurant backend, with JWT authentication

// @host localhost:8000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT access token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Login, token refresh, logout and registration
// @tag.name users
// @tag.description User management

// Dishes Service Endpoints
// @tag.name menu
// @tag.description Desks, allergens, ingredients, categories, dishes and garnishes
// @tag.name orders
// @tag.description Orders, order lines, invoices and invoice lines
