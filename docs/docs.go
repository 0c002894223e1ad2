// Package docs holds the OpenAPI document served under /swagger. It follows
// the swag layout but is maintained by hand alongside the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/advocates": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Every advocate profile with its owner's contact details, newest account first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "List advocates",
                "parameters": [
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Advocates retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/advocates/{id}/verify": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Set or clear the verification badge of an advocate",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Verify advocate",
                "parameters": [
                    {
                        "description": "Advocate ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "description": "Verification flag",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/endpoint.VerifyRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Advocate verification updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/bookings": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Every booking with both participants, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "List bookings",
                "parameters": [
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Bookings retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/bookings/export": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Download every booking as an xlsx workbook",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Export bookings",
                "responses": {
                    "200": {
                        "description": "Bookings workbook",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Totals of users, advocates, bookings and paid revenue plus the latest bookings",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Admin dashboard",
                "responses": {
                    "200": {
                        "description": "Dashboard retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/endpoint.DashboardStats"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/security-logs": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Latest security events, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Security log",
                "parameters": [
                    {
                        "description": "Page size (default 100)",
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Security logs retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/users": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Every account, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "List users",
                "parameters": [
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Users retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/admin/users/{id}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Delete an account with its advocate profile, services, bookings, reviews and sessions",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Delete user",
                "parameters": [
                    {
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User deleted successfully",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid user id or own account",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/advocates": {
            "get": {
                "description": "List available advocates ordered by rating. All filters are optional.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Advocates"
                ],
                "summary": "Search advocates",
                "parameters": [
                    {
                        "description": "Substring of name, specialization or location",
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Substring of specialization",
                        "name": "specialization",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Substring of location",
                        "name": "location",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Minimum rating",
                        "name": "minRating",
                        "in": "query",
                        "type": "number"
                    },
                    {
                        "description": "online, offline or both",
                        "name": "serviceType",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Advocates retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.AdvocateListing"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid filter",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/advocates/availability": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Show or hide the caller in the public directory",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Advocates"
                ],
                "summary": "Toggle availability",
                "parameters": [
                    {
                        "description": "Availability",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/endpoint.AvailabilityRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Availability updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request payload",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/advocates/me/profile": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Advocates"
                ],
                "summary": "Own advocate profile",
                "responses": {
                    "200": {
                        "description": "Profile retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.AdvocateListing"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/advocates/profile": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Replace the editable attributes of the caller's advocate profile",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Advocates"
                ],
                "summary": "Update advocate profile",
                "parameters": [
                    {
                        "description": "Profile attributes",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.AdvocateProfileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.Advocate"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request payload",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/advocates/{id}": {
            "get": {
                "description": "Advocate profile with active services and the latest reviews",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Advocates"
                ],
                "summary": "Advocate detail",
                "parameters": [
                    {
                        "description": "Advocate ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Advocate retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.AdvocateDetail"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid advocate id",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticate with email and password and receive a bearer token",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authentication"
                ],
                "summary": "User login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/endpoint.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/endpoint.AuthResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request payload",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid email or password",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "429": {
                        "description": "Too many requests",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Revoke the bearer token of the current session",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authentication"
                ],
                "summary": "User logout",
                "responses": {
                    "200": {
                        "description": "Logout successful",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Return the authenticated account and, for advocates, the profile",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authentication"
                ],
                "summary": "Current account",
                "responses": {
                    "200": {
                        "description": "Account retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/endpoint.AccountResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Create a user or advocate account and return a bearer token. Advocates get an initial profile.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authentication"
                ],
                "summary": "Register account",
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/endpoint.RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Registration successful",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/endpoint.AuthResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request, role or duplicate email",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "429": {
                        "description": "Too many requests",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Book an advocate, optionally for one of their services. The amount is fixed at creation.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Create booking",
                "parameters": [
                    {
                        "description": "Booking",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.CreateBookingRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Booking created successfully",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Missing or invalid fields",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings/advocate-bookings": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Bookings addressed to the caller's advocate profile with client details",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Bookings of the caller's practice",
                "responses": {
                    "200": {
                        "description": "Bookings retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.BookingView"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings/my-bookings": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Bookings made by the caller with advocate and service details, latest appointment first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Own bookings",
                "responses": {
                    "200": {
                        "description": "Bookings retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.BookingView"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Booking detail",
                "parameters": [
                    {
                        "description": "Booking ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Booking retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.BookingView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid booking id",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Booking not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/cancel": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Cancel one of the caller's pending or confirmed bookings",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Cancel booking",
                "parameters": [
                    {
                        "description": "Booking ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Booking cancelled",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "400": {
                        "description": "Booking can no longer be cancelled",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Booking not found or unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/status": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Advance a booking addressed to the caller. completed and cancelled are final.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bookings"
                ],
                "summary": "Update booking status",
                "parameters": [
                    {
                        "description": "Booking ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "description": "New status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/endpoint.BookingStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Booking status updated",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid status or transition",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Booking not found or unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/reviews": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Rate a completed booking once. The advocate's rating is recomputed from all reviews.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reviews"
                ],
                "summary": "Review a booking",
                "parameters": [
                    {
                        "description": "Review",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.CreateReviewRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Review submitted successfully",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid rating, booking not completed or already reviewed",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/reviews/advocate/{advocateId}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reviews"
                ],
                "summary": "Reviews of an advocate",
                "parameters": [
                    {
                        "description": "Advocate ID",
                        "name": "advocateId",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Reviews retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.ReviewWithAuthor"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid advocate id",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/services": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Services"
                ],
                "summary": "Create service",
                "parameters": [
                    {
                        "description": "Service",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.ServiceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Service created successfully",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "object"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Missing or invalid fields",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/services/advocate/{advocateId}": {
            "get": {
                "description": "Active services published by the advocate",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Services"
                ],
                "summary": "Services of an advocate",
                "parameters": [
                    {
                        "description": "Advocate ID",
                        "name": "advocateId",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Services retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.Service"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid advocate id",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/services/my-services": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Every service of the caller, active or not, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Services"
                ],
                "summary": "Own services",
                "responses": {
                    "200": {
                        "description": "Services retrieved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/model.Service"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Advocate profile not found",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        },
        "/services/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Update the provided fields of an owned service",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Services"
                ],
                "summary": "Update service",
                "parameters": [
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.ServiceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Service updated successfully",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/util.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.Service"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Service not found or unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Delete an owned service. Bookings that used it keep their amount.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Services"
                ],
                "summary": "Delete service",
                "parameters": [
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Service deleted successfully",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid service id",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "403": {
                        "description": "Access denied",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Service not found or unauthorized",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/util.APIResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "endpoint.AccountResponse": {
            "type": "object",
            "properties": {
                "advocate": {
                    "$ref": "#/definitions/model.Advocate"
                },
                "user": {
                    "$ref": "#/definitions/model.User"
                }
            }
        },
        "endpoint.AuthResponse": {
            "type": "object",
            "properties": {
                "advocate": {
                    "$ref": "#/definitions/model.Advocate"
                },
                "expires_at": {
                    "type": "string"
                },
                "token": {
                    "type": "string",
                    "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
                },
                "user": {
                    "$ref": "#/definitions/model.User"
                }
            }
        },
        "endpoint.AvailabilityRequest": {
            "type": "object",
            "required": [
                "is_available"
            ],
            "properties": {
                "is_available": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "endpoint.BookingStatusRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "example": "confirmed"
                }
            }
        },
        "endpoint.DashboardStats": {
            "type": "object",
            "properties": {
                "pendingBookings": {
                    "type": "integer",
                    "example": 4
                },
                "recentBookings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.BookingView"
                    }
                },
                "totalAdvocates": {
                    "type": "integer",
                    "example": 12
                },
                "totalBookings": {
                    "type": "integer",
                    "example": 57
                },
                "totalRevenue": {
                    "type": "number",
                    "example": 28500
                },
                "totalUsers": {
                    "type": "integer",
                    "example": 140
                }
            }
        },
        "endpoint.LoginRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "user@example.com"
                },
                "password": {
                    "type": "string",
                    "example": "password123"
                }
            }
        },
        "endpoint.RegisterRequest": {
            "type": "object",
            "required": [
                "email",
                "name",
                "password"
            ],
            "properties": {
                "bar_council_number": {
                    "type": "string",
                    "example": "D/1234/2015"
                },
                "bio": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "jane@example.com"
                },
                "experience_years": {
                    "type": "integer",
                    "example": 8
                },
                "hourly_rate": {
                    "type": "number",
                    "example": 500
                },
                "license_number": {
                    "type": "string",
                    "example": "LIC-5521"
                },
                "location": {
                    "type": "string",
                    "example": "New Delhi"
                },
                "name": {
                    "type": "string",
                    "example": "Jane Doe"
                },
                "password": {
                    "type": "string",
                    "example": "secret123"
                },
                "phone": {
                    "type": "string",
                    "example": "9876543210"
                },
                "role": {
                    "type": "string",
                    "example": "advocate"
                },
                "specialization": {
                    "type": "string",
                    "example": "Family Law"
                }
            }
        },
        "endpoint.VerifyRequest": {
            "type": "object",
            "required": [
                "is_verified"
            ],
            "properties": {
                "is_verified": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "model.Advocate": {
            "description": "Advocate profile",
            "type": "object",
            "properties": {
                "bar_council_number": {
                    "type": "string"
                },
                "bio": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "experience_years": {
                    "type": "integer",
                    "example": 8
                },
                "hourly_rate": {
                    "type": "number",
                    "example": 500
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "is_available": {
                    "type": "boolean",
                    "example": true
                },
                "is_verified": {
                    "type": "boolean",
                    "example": false
                },
                "license_number": {
                    "type": "string"
                },
                "location": {
                    "type": "string",
                    "example": "New Delhi"
                },
                "rating": {
                    "type": "number",
                    "example": 4.5
                },
                "specialization": {
                    "type": "string",
                    "example": "Family Law"
                },
                "total_reviews": {
                    "type": "integer",
                    "example": 12
                },
                "updated_at": {
                    "type": "string"
                },
                "user_id": {
                    "type": "integer",
                    "example": 2
                }
            }
        },
        "model.AdvocateDetail": {
            "description": "Advocate detail with services and recent reviews",
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "hourly_rate": {
                    "type": "number"
                },
                "id": {
                    "type": "integer"
                },
                "location": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "rating": {
                    "type": "number"
                },
                "reviews": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.ReviewWithAuthor"
                    }
                },
                "services": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Service"
                    }
                },
                "specialization": {
                    "type": "string"
                },
                "total_reviews": {
                    "type": "integer"
                }
            }
        },
        "model.AdvocateListing": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "jane@example.com"
                },
                "hourly_rate": {
                    "type": "number",
                    "example": 500
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "is_available": {
                    "type": "boolean",
                    "example": true
                },
                "is_verified": {
                    "type": "boolean",
                    "example": true
                },
                "location": {
                    "type": "string",
                    "example": "New Delhi"
                },
                "name": {
                    "type": "string",
                    "example": "Jane Doe"
                },
                "phone": {
                    "type": "string",
                    "example": "9876543210"
                },
                "rating": {
                    "type": "number",
                    "example": 4.5
                },
                "specialization": {
                    "type": "string",
                    "example": "Family Law"
                },
                "total_reviews": {
                    "type": "integer",
                    "example": 12
                }
            }
        },
        "model.AdvocateProfileRequest": {
            "type": "object",
            "properties": {
                "bar_council_number": {
                    "type": "string"
                },
                "bio": {
                    "type": "string"
                },
                "experience_years": {
                    "type": "integer"
                },
                "hourly_rate": {
                    "type": "number"
                },
                "license_number": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
                },
                "specialization": {
                    "type": "string"
                }
            }
        },
        "model.BookingView": {
            "type": "object",
            "properties": {
                "advocate_email": {
                    "type": "string"
                },
                "advocate_id": {
                    "type": "integer",
                    "example": 1
                },
                "advocate_name": {
                    "type": "string",
                    "example": "Jane Doe"
                },
                "booking_date": {
                    "type": "string",
                    "example": "2025-01-15"
                },
                "booking_time": {
                    "type": "string",
                    "example": "14:30"
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "notes": {
                    "type": "string"
                },
                "payment_status": {
                    "type": "string",
                    "example": "pending"
                },
                "service_id": {
                    "type": "integer",
                    "example": 2
                },
                "service_title": {
                    "type": "string"
                },
                "service_type": {
                    "type": "string",
                    "example": "online"
                },
                "status": {
                    "type": "string",
                    "example": "pending"
                },
                "total_amount": {
                    "type": "number",
                    "example": 500
                },
                "user_email": {
                    "type": "string"
                },
                "user_id": {
                    "type": "integer",
                    "example": 3
                },
                "user_name": {
                    "type": "string",
                    "example": "John Client"
                }
            }
        },
        "model.CreateBookingRequest": {
            "type": "object",
            "properties": {
                "advocate_id": {
                    "type": "integer",
                    "example": 1
                },
                "booking_date": {
                    "type": "string",
                    "example": "2025-01-15"
                },
                "booking_time": {
                    "type": "string",
                    "example": "14:30"
                },
                "notes": {
                    "type": "string"
                },
                "service_id": {
                    "type": "integer",
                    "example": 2
                },
                "service_type": {
                    "type": "string",
                    "example": "online"
                }
            }
        },
        "model.CreateReviewRequest": {
            "type": "object",
            "required": [
                "booking_id",
                "rating"
            ],
            "properties": {
                "booking_id": {
                    "type": "integer",
                    "example": 1
                },
                "comment": {
                    "type": "string",
                    "example": "Very helpful"
                },
                "rating": {
                    "type": "integer",
                    "example": 5
                }
            }
        },
        "model.ReviewWithAuthor": {
            "type": "object",
            "properties": {
                "advocate_id": {
                    "type": "integer",
                    "example": 1
                },
                "booking_id": {
                    "type": "integer",
                    "example": 1
                },
                "comment": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "rating": {
                    "type": "integer",
                    "example": 5
                },
                "user_id": {
                    "type": "integer",
                    "example": 3
                },
                "user_name": {
                    "type": "string",
                    "example": "John Client"
                }
            }
        },
        "model.Service": {
            "type": "object",
            "properties": {
                "advocate_id": {
                    "type": "integer",
                    "example": 1
                },
                "created_at": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "duration_minutes": {
                    "type": "integer",
                    "example": 60
                },
                "id": {
                    "type": "integer",
                    "example": 2
                },
                "is_active": {
                    "type": "boolean",
                    "example": true
                },
                "price": {
                    "type": "number",
                    "example": 1500
                },
                "service_type": {
                    "type": "string",
                    "example": "online"
                },
                "title": {
                    "type": "string",
                    "example": "Divorce consultation"
                }
            }
        },
        "model.ServiceRequest": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "duration_minutes": {
                    "type": "integer",
                    "example": 60
                },
                "is_active": {
                    "type": "boolean",
                    "example": true
                },
                "price": {
                    "type": "number",
                    "example": 1500
                },
                "service_type": {
                    "type": "string",
                    "example": "online"
                },
                "title": {
                    "type": "string",
                    "example": "Divorce consultation"
                }
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "john@example.com"
                },
                "id": {
                    "type": "integer",
                    "example": 3
                },
                "name": {
                    "type": "string",
                    "example": "John Client"
                },
                "phone": {
                    "type": "string",
                    "example": "9000000001"
                },
                "role": {
                    "type": "string",
                    "example": "user"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "util.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {
                    "type": "string"
                },
                "msg": {
                    "type": "string"
                },
                "success": {
                    "type": "boolean"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Book My Advocate API",
	Description:      "Marketplace API connecting clients with advocates: directory search, bookings, reviews and administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
