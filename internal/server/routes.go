// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/handlers"
	appmw "github.com/accountd/accountd/internal/middleware"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, cfg *config.Config, app *App, version string) {
	h := handlers.New(app.Accounts, app.Sessions, version)

	e.GET("/health", h.Health)

	api := e.Group(cfg.Server.APIBase)
	api.GET("/health", h.Health)
	api.GET("/version", h.Version)
	if cfg.Server.DocsDir != "" {
		api.Static("/docs", cfg.Server.DocsDir)
	}

	// Public
	api.POST("/authenticate", h.Authenticate)
	api.POST("/authenticate/:admin", h.Authenticate)
	api.POST("/register", h.Register)
	api.POST("/activate", h.Activate)
	api.POST("/password/forgot", h.ForgotPassword)
	api.POST("/password/reset", h.ResetPassword)
	api.GET("/verifytoken", h.VerifyToken)
	api.POST("/verifytoken", h.VerifyToken)

	// Authenticated
	authed := api.Group("", appmw.Authenticate(app.Accounts.Codec(), app.Sessions))
	authed.GET("/logout", h.Logout)
	authed.GET("/me", h.GetMe)
	authed.PATCH("/me", h.PatchMe)
	authed.POST("/me/settings", h.UpdateSettings)
	authed.PATCH("/me/updatepwd", h.UpdatePassword)

	// Admin
	users := authed.Group("/users", appmw.RequireAdmin(app.Accounts))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/admins", h.ListAdmins)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id", h.PatchUser)
	users.DELETE("/:id", h.DeleteUser)
}
