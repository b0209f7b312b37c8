// Package api holds the OpenAPI description served at /api/docs.
package api

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
                "produces": ["application/json"],
                "tags": ["Monitoring"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/store": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Monitoring"],
                "summary": "Store health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthCheckResult"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthCheckResult"}}
                }
            }
        },
        "/license": {
            "get": {
                "description": "Looks up a license by username, ignoring case",
                "produces": ["application/json"],
                "tags": ["Licenses"],
                "summary": "Check a license",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "user", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/licenses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Licenses"],
                "summary": "List licenses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.License"}}}
                }
            }
        },
        "/license/add": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Licenses"],
                "summary": "Add a license",
                "parameters": [
                    {"description": "License", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateLicenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LicenseChangeResponse"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/license/update": {
            "put": {
                "description": "Partial update: only fields present in the body change; \"role\": null clears the role",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Licenses"],
                "summary": "Update a license",
                "parameters": [
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateLicenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LicenseChangeResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/license/delete": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Licenses"],
                "summary": "Delete a license",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "user", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LicenseDeleteResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/heartbeat": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Heartbeats"],
                "summary": "Record a heartbeat",
                "parameters": [
                    {"description": "Heartbeat", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.HeartbeatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HeartbeatAck"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/heartbeat/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Heartbeats"],
                "summary": "Heartbeat history",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.HeartbeatEvent"}}}
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Monitoring"],
                "summary": "Prometheus metrics endpoint",
                "responses": {"200": {"description": "Prometheus metrics", "schema": {"type": "string"}}}
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Monitoring"],
                "summary": "Server version",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.VersionInfo"}}}
            }
        }
    },
    "definitions": {
        "handlers.HealthCheckResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "duration": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "error": {"type": "string"}
            }
        },
        "handlers.LicenseChangeResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "license": {"$ref": "#/definitions/models.License"}
            }
        },
        "handlers.LicenseDeleteResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "deleted": {"$ref": "#/definitions/models.License"}
            }
        },
        "handlers.VersionInfo": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "commit": {"type": "string"},
                "build_date": {"type": "string"},
                "go_version": {"type": "string"},
                "store_backend": {"type": "string"},
                "uptime_seconds": {"type": "integer"}
            }
        },
        "models.License": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "valid": {"type": "boolean"},
                "role": {"type": "string", "x-nullable": true},
                "expires": {"type": "string", "example": "2026-09-17"},
                "notes": {"type": "string"}
            }
        },
        "models.CreateLicenseRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "valid": {"type": "boolean"},
                "role": {"type": "string"},
                "expires": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "models.HeartbeatRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "models.HeartbeatAck": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "models.HeartbeatEvent": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string"},
                "username": {"type": "string"},
                "version": {"type": "string"},
                "status": {"type": "string"}
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
	Title:            "licenze API",
	Description:      "License validation and client heartbeat service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
