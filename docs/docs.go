// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/healthz": {
            "get": {
                "description": "Returns service status",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/v1/payment/submit": {
            "post": {
                "description": "Submits a manual UPI payment with its screenshot for admin verification.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Payment"],
                "summary": "Submit UPI payment",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header", "required": true},
                    {"type": "integer", "description": "Amount in rupees", "name": "amount", "in": "formData", "required": true},
                    {"type": "string", "description": "membership, withdraw or content_purchase", "name": "transaction_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Membership tier id or content id", "name": "item_id", "in": "formData"},
                    {"type": "file", "description": "PNG or JPEG payment screenshot, at most 5MB", "name": "screenshot", "in": "formData"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespSubmitPayment"}}}
            }
        },
        "/api/v1/payment/intent": {
            "get": {
                "description": "Returns the upi://pay deep link for an amount without submitting anything.",
                "produces": ["application/json"],
                "tags": ["Payment"],
                "summary": "Build UPI intent",
                "parameters": [
                    {"type": "integer", "description": "Amount in rupees", "name": "amount", "in": "query", "required": true},
                    {"type": "string", "description": "membership, withdraw or content_purchase", "name": "transaction_type", "in": "query", "required": true},
                    {"type": "string", "description": "Membership tier id or content id", "name": "item_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespPaymentIntent"}}}
            }
        },
        "/api/v1/payment/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Payment"],
                "summary": "List membership tiers",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespCatalog"}}}
            }
        },
        "/api/v1/user/membership": {
            "get": {
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Get my membership",
                "parameters": [{"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespMembership"}}}
            }
        },
        "/api/v1/user/transactions": {
            "get": {
                "description": "Returns the caller's submissions, newest first.",
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "List my payment submissions",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header", "required": true},
                    {"type": "integer", "description": "Offset", "name": "from", "in": "query"},
                    {"type": "integer", "description": "Page size, at most 100", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespListTransactions"}}}
            }
        },
        "/api/v1/admin/list_payment_transactions": {
            "post": {
                "description": "Paginated, filterable list of submitted payments for the review desk.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List Payment Transactions (Admin)",
                "parameters": [
                    {"type": "string", "description": "Bearer token of an admin", "name": "Authorization", "in": "header", "required": true},
                    {"description": "Filters, pagination and sorting", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ListTransactionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespListPaymentTransactions"}}}
            }
        },
        "/api/v1/admin/get_payment_statistic": {
            "post": {
                "description": "Daily submission counts and amounts, review backlog and membership totals.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Get Payment Statistics (Admin)",
                "parameters": [
                    {"type": "string", "description": "Bearer token of an admin", "name": "Authorization", "in": "header", "required": true},
                    {"description": "Statistic request parameters", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        }
    },
    "definitions": {
        "handlers.RespSubmitPayment": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {
                    "type": "object",
                    "properties": {
                        "transaction_id": {"type": "string"},
                        "status": {"type": "string"},
                        "payment_uri": {"type": "string"},
                        "screenshot_url": {"type": "string"},
                        "unlocked_item_id": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        },
        "handlers.RespPaymentIntent": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {"type": "object", "properties": {"payment_uri": {"type": "string"}}}
            }
        },
        "handlers.RespCatalog": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {
                    "type": "array",
                    "items": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "amount": {"type": "integer"}}}
                }
            }
        },
        "handlers.RespMembership": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {"type": "object", "properties": {"user_id": {"type": "string"}, "membership": {"type": "string"}, "active": {"type": "boolean"}}}
            }
        },
        "handlers.TransactionItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "transaction_id": {"type": "string"},
                "user_id": {"type": "string"},
                "amount": {"type": "string"},
                "transaction_type": {"type": "string"},
                "status": {"type": "string"},
                "item_id": {"type": "string"},
                "screenshot_url": {"type": "string"},
                "payment_uri": {"type": "string"},
                "timestamp": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handlers.RespListTransactions": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {"type": "array", "items": {"$ref": "#/definitions/handlers.TransactionItem"}},
                        "total": {"type": "integer"}
                    }
                }
            }
        },
        "handlers.RespListPaymentTransactions": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {"type": "array", "items": {"$ref": "#/definitions/handlers.TransactionItem"}},
                        "total": {"type": "integer"}
                    }
                }
            }
        },
        "handlers.ListTransactionRequest": {
            "type": "object",
            "properties": {
                "filters": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"field": {"type": "string"}, "operator": {"type": "string"}, "values": {"type": "array", "items": {}}}
                    }
                },
                "from": {"type": "integer"},
                "size": {"type": "integer"},
                "sort_by": {"type": "string"},
                "sort_order": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Paydesk API",
	Description:      "Manual UPI payment submission and review backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
