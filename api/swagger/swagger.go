package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule Builder API",
        "description": "Timetable collision detection for academic schedules",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Collisions", "description": "Collision checks over lesson sets"},
        {"name": "Reports", "description": "Asynchronous collision reports"},
        {"name": "Bookings", "description": "Room and booking passthrough"},
        {"name": "Options", "description": "Checker reference data"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/collisions/check": {
            "post": {
                "tags": ["Collisions"],
                "summary": "Check lessons for collisions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckCollisionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed lessons"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/collisions/check-spreadsheet": {
            "get": {
                "tags": ["Collisions"],
                "summary": "Check the configured spreadsheet feeds",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "check_room_collisions", "in": "query", "type": "boolean"},
                    {"name": "check_teacher_collisions", "in": "query", "type": "boolean"},
                    {"name": "check_space_collisions", "in": "query", "type": "boolean"},
                    {"name": "check_outlook_collisions", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Lesson feed unavailable"}
                }
            }
        },
        "/collisions/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a collision report",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collisions/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get report status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown report"}
                }
            }
        },
        "/collisions/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List rooms",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings within a window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/options": {
            "get": {
                "tags": ["Options"],
                "summary": "Get checker options",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/options/semester": {
            "put": {
                "tags": ["Options"],
                "summary": "Replace the semester configuration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/options/teachers": {
            "post": {
                "tags": ["Options"],
                "summary": "Replace the teacher roster from a TSV export",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/options/very-same": {
            "put": {
                "tags": ["Options"],
                "summary": "Replace the very-same lesson groups",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CheckCollisionsRequest": {
            "type": "object",
            "required": ["lessons"],
            "properties": {
                "lessons": {"type": "array", "items": {"type": "object"}},
                "check_room_collisions": {"type": "boolean"},
                "check_teacher_collisions": {"type": "boolean"},
                "check_space_collisions": {"type": "boolean"},
                "check_outlook_collisions": {"type": "boolean"},
                "very_same_lessons": {"type": "array", "items": {"type": "array", "items": {"type": "object"}}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
