// Package docs registers the sportello OpenAPI document with swag so the
// /swagger route can serve it.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Check the health of the service",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/healthgo.Check"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/healthgo.Check"}}
                }
            }
        },
        "/v1/menu": {
            "get": {
                "produces": ["application/json"],
                "tags": ["menu"],
                "summary": "List locations, the meals they serve and unit prices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.MenuResponse"}}
                }
            }
        },
        "/v1/locations/{location}/meals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["menu"],
                "summary": "Meals available at a location",
                "parameters": [
                    {"type": "string", "description": "Location", "name": "location", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.LocationMealsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.ErrorResponse"}}
                }
            }
        },
        "/v1/order/reconcile": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["order"],
                "summary": "Drop selected meals that the location does not serve",
                "parameters": [
                    {"description": "Location and selected meals", "name": "selection", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.ReconcileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.LocationMealsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.ErrorResponse"}}
                }
            }
        },
        "/v1/order/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["order"],
                "summary": "Validate every field of a draft without submitting it",
                "parameters": [
                    {"description": "Order draft", "name": "draft", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.OrderDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.ValidationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.ErrorResponse"}}
                }
            }
        },
        "/v1/order/validate/{field}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["order"],
                "summary": "Validate a single field of a draft",
                "parameters": [
                    {"type": "string", "description": "Field name", "name": "field", "in": "path", "required": true},
                    {"description": "Order draft", "name": "draft", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.OrderDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.FieldValidationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.ErrorResponse"}}
                }
            }
        },
        "/v1/order": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["order"],
                "summary": "Submit a meal order",
                "parameters": [
                    {"description": "Order draft", "name": "draft", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.OrderDraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ordine.Entry"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/main.ValidationResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.ErrorResponse"}}
                }
            }
        },
        "/v1/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["order"],
                "summary": "List accepted orders, oldest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ordine.Entry"}}}
                }
            }
        },
        "/v1/order/sse": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["order"],
                "summary": "Get live orders via Server-Sent Events (SSE)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ordine.Entry"}}
                }
            }
        },
        "/v1/order/ws": {
            "get": {
                "tags": ["order"],
                "summary": "Get live orders over a WebSocket",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"$ref": "#/definitions/ordine.Entry"}}
                }
            }
        }
    },
    "definitions": {
        "healthgo.Check": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "failures": {"type": "object", "additionalProperties": {"type": "string"}},
                "component": {
                    "type": "object",
                    "properties": {
                        "name": {"type": "string"},
                        "version": {"type": "string"}
                    }
                }
            }
        },
        "main.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "main.OrderDraftRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female"]},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string", "enum": ["chennai", "coimbatore", "erode"]},
                "meals": {"type": "array", "items": {"type": "string", "enum": ["breakfast", "lunch", "dinner"]}},
                "date": {"type": "string"}
            }
        },
        "main.ReconcileRequest": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "meals": {"type": "array", "items": {"type": "string", "enum": ["breakfast", "lunch", "dinner"]}}
            }
        },
        "main.LocationMealsResponse": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "meals": {"type": "array", "items": {"type": "string"}}
            }
        },
        "main.MenuResponse": {
            "type": "object",
            "properties": {
                "locations": {"type": "array", "items": {"$ref": "#/definitions/main.LocationMealsResponse"}},
                "prices": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "main.FieldValidationResponse": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "valid": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "main.ValidationResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "fields": {"type": "object", "additionalProperties": {"$ref": "#/definitions/ordine.FieldResult"}}
            }
        },
        "ordine.FieldResult": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "ordine.Entry": {
            "type": "object",
            "properties": {
                "order_id": {"type": "string"},
                "ordered_at": {"type": "string"},
                "username": {"type": "string"},
                "gender": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string"},
                "meals": {"type": "array", "items": {"type": "string"}},
                "date": {"type": "string"},
                "total_price": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sportello",
	Description:      "Meal order counter: availability, validation and submission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
