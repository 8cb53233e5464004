// Package docs holds the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/relay/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Service identity, version and provider circuit breaker states",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.HealthResponse"}
                    }
                }
            }
        },
        "/send-notification": {
            "post": {
                "security": [{"APISecret": []}, {"BearerAuth": []}],
                "description": "Decrypts the provider credentials in the request and delivers one alert.\nEvery dispatch outcome, including provider errors, is reported with HTTP 200.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Send a streak notification",
                "parameters": [
                    {
                        "description": "Notification request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/notification.SendRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Dispatch outcome",
                        "schema": {"$ref": "#/definitions/notification.SendResponse"}
                    },
                    "400": {
                        "description": "Malformed JSON or missing fields",
                        "schema": {"$ref": "#/definitions/notification.ErrorResponse"}
                    },
                    "401": {
                        "description": "Missing or invalid API secret",
                        "schema": {"$ref": "#/definitions/notification.ErrorResponse"}
                    },
                    "413": {
                        "description": "Request body too large",
                        "schema": {"$ref": "#/definitions/notification.ErrorResponse"}
                    },
                    "429": {
                        "description": "Too many requests",
                        "schema": {"$ref": "#/definitions/notification.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "http.CheckStatus": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": {}},
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/http.CheckStatus"}
                },
                "service": {"type": "string", "example": "streaky-notification-proxy"},
                "status": {"type": "string", "example": "healthy"},
                "timestamp": {"type": "string", "example": "2025-11-15T12:30:00Z"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "notification.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "validation failed: message.username is required"}
            }
        },
        "notification.MessageDTO": {
            "type": "object",
            "required": ["current_streak", "username"],
            "properties": {
                "contributions_today": {"type": "integer", "example": 0},
                "current_streak": {"type": "integer", "example": 42},
                "message": {"type": "string", "example": "Your streak ends in 3 hours!"},
                "username": {"type": "string", "example": "octocat"}
            }
        },
        "notification.SendRequest": {
            "type": "object",
            "required": ["message", "type"],
            "properties": {
                "encrypted_chat_id": {"type": "string"},
                "encrypted_token": {"type": "string"},
                "encrypted_webhook": {"type": "string", "example": "q83vEjRWeJq83vEjR...=="},
                "message": {"$ref": "#/definitions/notification.MessageDTO"},
                "type": {"type": "string", "example": "discord"}
            }
        },
        "notification.SendResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Discord API error: 404 Not Found - Unknown Webhook"},
                "success": {"type": "boolean", "example": false}
            }
        }
    },
    "securityDefinitions": {
        "APISecret": {
            "description": "Shared relay secret.",
            "type": "apiKey",
            "name": "X-API-Secret",
            "in": "header"
        },
        "BearerAuth": {
            "description": "HS256 token signed with the relay secret, sent as \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Streaky Notification Relay API",
	Description:      "Decrypts per-user provider credentials and forwards streak alerts to Discord and Telegram.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
