// Package docs registers the Swagger document served at /swagger/index.html.
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
        "/get-banks": {
            "get": {
                "description": "Lists Nigerian banks known to Paystack, excluding inactive ones.",
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "List banks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BanksResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/verify-bank-account": {
            "post": {
                "description": "Resolves the account holder name of a 10-digit account number through Paystack.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Verify bank account",
                "parameters": [
                    {"description": "Account number and bank code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.VerifyAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.VerifyAccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/send-email": {
            "post": {
                "description": "Renders the welcome or ticket template and hands it to the mail relay.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Send transactional email",
                "parameters": [
                    {"description": "Tagged email request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SendEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Message"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current browser session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}}}
            }
        },
        "/session/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Re-read the signed-in user's profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}}}
            }
        },
        "/theme/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Flip the light/dark preference",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ThemeResponse"}}}
            }
        }
    },
    "definitions": {
        "api.BanksResponse": {
            "type": "object",
            "properties": {"banks": {"type": "array", "items": {"type": "object"}}}
        },
        "api.VerifyAccountResponse": {
            "type": "object",
            "properties": {
                "verified": {"type": "boolean"},
                "account_name": {"type": "string"},
                "account_number": {"type": "string"},
                "bank_id": {"type": "integer"}
            }
        },
        "api.SendEmailRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["welcome", "ticket"]},
                "userName": {"type": "string"},
                "email": {"type": "string"},
                "eventTitle": {"type": "string"},
                "eventDate": {"type": "string"},
                "eventLocation": {"type": "string"},
                "ticketCount": {"type": "integer"},
                "totalAmount": {"type": "number"},
                "orderId": {"type": "string"}
            }
        },
        "api.SessionResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.Identity"},
                "profile": {"$ref": "#/definitions/domain.Profile"},
                "loading": {"type": "boolean"},
                "theme": {"type": "string", "enum": ["light", "dark"]}
            }
        },
        "api.ThemeResponse": {
            "type": "object",
            "properties": {"theme": {"type": "string", "enum": ["light", "dark"]}}
        },
        "domain.Identity": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "domain.Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "creator", "admin"]},
                "gender": {"type": "string"},
                "school": {"type": "string"},
                "avatar_name": {"type": "string"},
                "avatar_url": {"type": "string"}
            }
        },
        "domain.VerifyAccountRequest": {
            "type": "object",
            "properties": {
                "account_number": {"type": "string"},
                "bank_code": {"type": "string"}
            }
        },
        "response.Message": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Frecks Web API",
	Description:      "Payment utilities, transactional email and browser session routes of the Frecks web frontend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
