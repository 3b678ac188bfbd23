// Package docs holds the OpenAPI description served under /swagger.
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
        "/giveaways": {
            "get": {
                "description": "Returns snapshots of every giveaway held in memory, oldest first.",
                "produces": ["application/json"],
                "tags": ["giveaways"],
                "summary": "List giveaways",
                "parameters": [
                    {"type": "string", "description": "Filter by guild", "name": "guild_id", "in": "query"},
                    {
                        "enum": ["active", "ended_success", "ended_insufficient"],
                        "type": "string",
                        "description": "Filter by state",
                        "name": "state",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.GiveawayListResponse"}}
                }
            }
        },
        "/giveaways/{id}": {
            "get": {
                "description": "Returns one giveaway by its announcement message ID.",
                "produces": ["application/json"],
                "tags": ["giveaways"],
                "summary": "Get a giveaway",
                "parameters": [
                    {"type": "string", "description": "Giveaway ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/giveaway.Giveaway"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "giveaway.Giveaway": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "guild_id": {"type": "string"},
                "channel_id": {"type": "string"},
                "prize": {"type": "string"},
                "host": {"type": "string"},
                "winners_count": {"type": "integer"},
                "total_seconds": {"type": "integer"},
                "remaining_seconds": {"type": "integer"},
                "state": {"type": "string"},
                "entrants": {"type": "array", "items": {"type": "string"}},
                "winners": {"type": "array", "items": {"type": "string"}},
                "reroll_excluded": {"type": "array", "items": {"type": "string"}},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"}
            }
        },
        "http.GiveawayListResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/giveaway.Giveaway"}},
                "total": {"type": "integer"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "object"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "path": {"type": "string"},
                "method": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Giveaway Bot API",
	Description:      "Read-only status API of the Discord giveaway bot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
