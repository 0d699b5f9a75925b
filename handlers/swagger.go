package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>campboard — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main endpoints. Hand-maintained;
// regenerate if the surface grows much beyond this.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "campboard", "version": "v0.1.0" },
  "paths": {
    "/auth/signup": {
      "post": { "summary": "Create a local account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "tokens returned" }, "400": { "description": "invalid email or weak password" }, "409": { "description": "email in use" } } }
    },
    "/auth/login": {
      "post": { "summary": "Email/password login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "wrong email or password" } } }
    },
    "/auth/login/oidc": {
      "post": { "summary": "Exchange an external ID token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"idToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Get the caller's account", "responses": { "200": { "description": "account" } } }
    },
    "/api/v1/me/kids": {
      "post": { "summary": "Add a kid to the roster", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated account" } } }
    },
    "/api/v1/me/kids/unscheduled": {
      "get": { "summary": "Roster kids without a schedule", "responses": { "200": { "description": "kid names" } } }
    },
    "/api/v1/schedules": {
      "get": { "summary": "List the caller's schedules", "responses": { "200": { "description": "schedules" } } },
      "post": { "summary": "Create a schedule", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"kidName":{"type":"string"},"startDate":{"type":"string","format":"date-time"},"weekCount":{"type":"integer"}}}}}}, "responses": { "201": { "description": "schedule with colors" } } }
    },
    "/api/v1/schedules/{id}": {
      "get": { "summary": "Load a schedule", "responses": { "200": { "description": "schedule with colors" }, "403": { "description": "not a member" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a schedule (owner only)", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/v1/schedules/{id}/cells": {
      "put": { "summary": "Replace one cell's attendees", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"campIndex":{"type":"integer"},"weekIndex":{"type":"integer"},"kids":{"type":"array","items":{"type":"string"}}}}}}}, "responses": { "200": { "description": "updated schedule" }, "409": { "description": "busy, retry" } } }
    },
    "/api/v1/schedules/{id}/summary/{kid}": {
      "get": { "summary": "Per-week itinerary for one kid", "responses": { "200": { "description": "week summaries" } } }
    },
    "/api/v1/schedules/{id}/summary/{kid}/export": {
      "get": { "summary": "Export the summary as CSV", "responses": { "200": { "description": "download link" }, "501": { "description": "object storage not configured" } } }
    },
    "/api/v1/schedules/{id}/live": {
      "get": { "summary": "Live schedule stream (websocket upgrade)", "responses": { "101": { "description": "switching protocols" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
