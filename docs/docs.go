// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/stations": {
            "get": {
                "summary": "Find charging stations by postal code",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "5 digit postal code", "name": "postal_code", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SearchResult"}},
                    "400": {"description": "Invalid postal code", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/malfunctions": {
            "get": {
                "summary": "List open malfunction reports",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MalfunctionReport"}}}
                }
            },
            "post": {
                "summary": "Report a malfunction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Report", "name": "report", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid report", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/malfunctions/{stationId}": {
            "get": {
                "summary": "Get the open report of a station",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "stationId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MalfunctionReport"}},
                    "404": {"description": "No open report", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "summary": "Resolve the open report of a station",
                "parameters": [
                    {"type": "string", "name": "stationId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Resolved"},
                    "400": {"description": "Blank station id", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/exports/malfunctions.xlsx": {
            "get": {
                "summary": "Download open reports as XLSX",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/issue-types": {
            "get": {
                "summary": "Predefined malfunction reasons",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.ReportRequest": {
            "type": "object",
            "required": ["station_id", "reason"],
            "properties": {
                "station_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "models.MalfunctionReport": {
            "type": "object",
            "properties": {
                "station_id": {"type": "string"},
                "reason": {"type": "string"},
                "reported_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.StationStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "stable_key": {"type": "string"},
                "operator": {"type": "string"},
                "street": {"type": "string"},
                "postal_code": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "broken": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "models.SearchResult": {
            "type": "object",
            "properties": {
                "postal_code": {"type": "string"},
                "count": {"type": "integer"},
                "broken_count": {"type": "integer"},
                "warning": {"type": "string"},
                "stations": {"type": "array", "items": {"$ref": "#/definitions/models.StationStatus"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ChargeHub API",
	Description:      "Search EV charging stations by postal code and track malfunction reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
