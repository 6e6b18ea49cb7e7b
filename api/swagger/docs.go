// Package swagger registers the OpenAPI document served under /swagger.
//
// The document below is an abridged, hand-maintained route index: paths, tags
// and summaries only, without parameter or schema definitions. Running
// `swag init -g cmd/api/main.go -o api/swagger` replaces it with the full
// document built from the handler annotations.
package swagger

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
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Login"}},
        "/api/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout"}},
        "/api/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}]}},
        "/api/users": {"post": {"tags": ["users"], "summary": "Create a new user", "security": [{"BearerAuth": []}]}},
        "/api/products": {
            "get": {"tags": ["inventory"], "summary": "Get products", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["inventory"], "summary": "Create product", "security": [{"BearerAuth": []}]}
        },
        "/api/products/{id}": {
            "put": {"tags": ["inventory"], "summary": "Update product", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["inventory"], "summary": "Delete product", "security": [{"BearerAuth": []}]}
        },
        "/api/products/{id}/adjust": {"post": {"tags": ["inventory"], "summary": "Adjust stock", "security": [{"BearerAuth": []}]}},
        "/api/products/{id}/movements": {"get": {"tags": ["inventory"], "summary": "Stock movements", "security": [{"BearerAuth": []}]}},
        "/api/sales": {"post": {"tags": ["sales"], "summary": "Create sale", "security": [{"BearerAuth": []}]}},
        "/api/invoices": {"get": {"tags": ["sales"], "summary": "List invoices", "security": [{"BearerAuth": []}]}},
        "/api/invoices/{id}": {
            "get": {"tags": ["sales"], "summary": "Get invoice", "security": [{"BearerAuth": []}]},
            "put": {"tags": ["sales"], "summary": "Edit sale", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["sales"], "summary": "Delete sale", "security": [{"BearerAuth": []}]}
        },
        "/api/invoices/{id}/payment": {"post": {"tags": ["sales"], "summary": "Record payment", "security": [{"BearerAuth": []}]}},
        "/api/invoices/{id}/cancel": {"post": {"tags": ["sales"], "summary": "Cancel invoice", "security": [{"BearerAuth": []}]}},
        "/api/invoices/refresh-overdue": {"post": {"tags": ["sales"], "summary": "Refresh overdue invoices", "security": [{"BearerAuth": []}]}},
        "/api/invoices/import": {"post": {"tags": ["sales"], "summary": "Import sales", "security": [{"BearerAuth": []}]}},
        "/api/cash/products": {
            "get": {"tags": ["cash"], "summary": "List cash products", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["cash"], "summary": "Create cash product", "security": [{"BearerAuth": []}]}
        },
        "/api/cash/sales": {"post": {"tags": ["cash"], "summary": "Create cash sale", "security": [{"BearerAuth": []}]}},
        "/api/cash/invoices/{id}": {
            "get": {"tags": ["cash"], "summary": "Get cash invoice", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["cash"], "summary": "Delete cash sale", "security": [{"BearerAuth": []}]}
        },
        "/api/cash/invoices/{id}/cancel": {"post": {"tags": ["cash"], "summary": "Cancel cash invoice", "security": [{"BearerAuth": []}]}},
        "/api/audit-logs": {"get": {"tags": ["audit"], "summary": "Get audit logs", "security": [{"BearerAuth": []}]}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Back-office Sales API",
	Description:      "Invoices, stock ledger and cash department for a small shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
