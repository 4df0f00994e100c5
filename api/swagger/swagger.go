package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Guard Roster API",
        "description": "Shift scheduling and payroll history for guard services",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Per-site shift slot catalog"},
        {"name": "Roster", "description": "Assignment ledger and schedule projections"},
        {"name": "Payroll", "description": "Work history replay and exports"},
        {"name": "Advances", "description": "Advance and cash payment documents"},
        {"name": "Metrics", "description": "Observability"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/sites/{siteId}/slots": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List shift slots for a site",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create shift slot",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate shift code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites/{siteId}/slots/{code}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get shift slot",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Catalog"],
                "summary": "Update shift slot",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Catalog"],
                "summary": "Delete shift slot",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Slot locked by committed assignments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites/{siteId}/rates/{positionId}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Resolve effective pay components for a site and position",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "positionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown position", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/assign": {
            "post": {
                "tags": ["Roster"],
                "summary": "Assign guard to a shift slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Double booking or capacity conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/unassign": {
            "post": {
                "tags": ["Roster"],
                "summary": "Remove a committed assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UnassignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/move": {
            "post": {
                "tags": ["Roster"],
                "summary": "Move a guard between slots on the same date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/replace": {
            "post": {
                "tags": ["Roster"],
                "summary": "Replace the whole schedule for one site and date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Aggregated replacement violations", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/schedules": {
            "get": {
                "tags": ["Roster"],
                "summary": "List schedules",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"},
                    {"name": "site_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/schedules/{siteId}/{date}": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get schedule for one site and date",
                "parameters": [
                    {"name": "siteId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/index": {
            "get": {
                "tags": ["Roster"],
                "summary": "Date-to-site schedule index over a range",
                "parameters": [
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/availability": {
            "get": {
                "tags": ["Roster"],
                "summary": "List guards with no assignment on a date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/guards/{guardId}/work-history": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Guard work history over a date range",
                "parameters": [
                    {"name": "guardId", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/guards/{guardId}/summary": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Lifetime guard work summary",
                "parameters": [
                    {"name": "guardId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/exports": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Queue an asynchronous payroll export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/exports/status/{id}": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/exports/download/{token}": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Download a finished export artifact",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "404": {"description": "Unknown or expired token"}
                }
            }
        },
        "/advances": {
            "get": {
                "tags": ["Advances"],
                "summary": "List advance documents",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["advance", "cash"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Advances"],
                "summary": "Create an advance document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdvanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate document number", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/advances/{id}": {
            "get": {
                "tags": ["Advances"],
                "summary": "Get one advance document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown document", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Advances"],
                "summary": "Update an advance document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAdvanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Advances"],
                "summary": "Delete an advance document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/advances/{id}/status": {
            "put": {
                "tags": ["Advances"],
                "summary": "Move an advance document through its workflow",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdvanceStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Verdict requires admin role", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated system metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSlotRequest": {
            "type": "object",
            "properties": {
                "shift_code": {"type": "string"},
                "name": {"type": "string"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "20:00"},
                "number_of_people": {"type": "integer"},
                "classification": {"type": "string", "enum": ["day", "night"]}
            },
            "required": ["shift_code", "name", "start_time", "end_time"]
        },
        "UpdateSlotRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "number_of_people": {"type": "integer"},
                "classification": {"type": "string", "enum": ["day", "night"]}
            }
        },
        "AssignRequest": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "site_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-03-14"},
                "shift_code": {"type": "string"},
                "position_id": {"type": "string"},
                "position_allowance": {"type": "number"},
                "other_allowance": {"type": "number"}
            },
            "required": ["guard_id", "site_id", "date", "shift_code", "position_id"]
        },
        "UnassignRequest": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "site_id": {"type": "string"},
                "date": {"type": "string"},
                "shift_code": {"type": "string"}
            },
            "required": ["guard_id", "site_id", "date", "shift_code"]
        },
        "MoveRequest": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "site_id": {"type": "string"},
                "date": {"type": "string"},
                "from_shift_code": {"type": "string"},
                "to_shift_code": {"type": "string"}
            },
            "required": ["guard_id", "site_id", "date", "from_shift_code", "to_shift_code"]
        },
        "ReplaceEntry": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "position_id": {"type": "string"},
                "position_allowance": {"type": "number"},
                "other_allowance": {"type": "number"}
            },
            "required": ["guard_id", "position_id"]
        },
        "ReplaceScheduleRequest": {
            "type": "object",
            "properties": {
                "site_id": {"type": "string"},
                "date": {"type": "string"},
                "shifts": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {"$ref": "#/definitions/ReplaceEntry"}
                    }
                }
            },
            "required": ["site_id", "date", "shifts"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["guard_id", "start_date", "end_date", "format"]
        },
        "AdvanceItemRequest": {
            "type": "object",
            "properties": {
                "guard_id": {"type": "string"},
                "amount": {"type": "number"},
                "reason": {"type": "string"}
            },
            "required": ["guard_id", "amount"]
        },
        "CreateAdvanceRequest": {
            "type": "object",
            "properties": {
                "doc_number": {"type": "string", "example": "ADV-2026-001"},
                "date": {"type": "string", "example": "2026-03-14"},
                "type": {"type": "string", "enum": ["advance", "cash"]},
                "status": {"type": "string", "enum": ["Draft", "Pending"]},
                "items": {"type": "array", "items": {"$ref": "#/definitions/AdvanceItemRequest"}}
            },
            "required": ["doc_number", "date", "type", "items"]
        },
        "UpdateAdvanceRequest": {
            "type": "object",
            "properties": {
                "doc_number": {"type": "string"},
                "date": {"type": "string"},
                "type": {"type": "string", "enum": ["advance", "cash"]},
                "items": {"type": "array", "items": {"$ref": "#/definitions/AdvanceItemRequest"}}
            }
        },
        "AdvanceStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Draft", "Pending", "Approved", "Rejected"]}
            },
            "required": ["status"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "details": {"type": "object"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
