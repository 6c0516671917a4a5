// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package docs registers the Inkwell OpenAPI document with swag so the
// router can serve it at /swagger/doc.json. Import it for side effects.
//
// The document is maintained by hand next to internal/api/router.go; keep the
// two in step when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/inkwell/issues"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health/live": {
            "get": {
                "tags": ["Core"],
                "summary": "Liveness check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Process is alive", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["Core"],
                "summary": "Readiness check",
                "description": "Pings the database.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/Envelope"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "description": "Checks the admin password and one-time code and issues a token in the body and the admin cookie.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "400": {"description": "Validation failed or wrong password or code", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Clear the admin cookie",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Cookie cleared", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/article/search": {
            "post": {
                "tags": ["Articles"],
                "summary": "Search and paginate articles",
                "description": "Visitors see published articles only; admins may filter by status.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/SearchArticlesRequest"}}],
                "responses": {
                    "200": {"description": "One page of articles", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Bad page, size or filter", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/get": {
            "post": {
                "tags": ["Articles"],
                "summary": "Read one article",
                "description": "Password protected articles need an admin token or an unlock permit.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ArticleIDRequest"}}],
                "responses": {
                    "200": {"description": "Article detail", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Article is password protected", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "No such published article", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/about": {
            "post": {
                "tags": ["Articles"],
                "summary": "Read the about page",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Article detail", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "No about page", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/unlock": {
            "post": {
                "tags": ["Articles"],
                "summary": "Unlock a password protected article",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UnlockArticleRequest"}}],
                "responses": {
                    "200": {"description": "Permit granted to the visitor", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Wrong password or article is not protected", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Articles"],
                "summary": "Create an article",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ArticleInput"}}],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Admin token missing or invalid", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/update": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Articles"],
                "summary": "Replace an article",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ArticleInput"}}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "No such article", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/remove": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Articles"],
                "summary": "Remove an article with its attachments and stats",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ArticleIDRequest"}}],
                "responses": {"200": {"description": "Removed", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/article/upload_attachment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Articles"],
                "summary": "Attach a file to an article",
                "description": "The body is the raw file. Metadata travels in headers.",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "header", "name": "X-Article-Id", "type": "string", "required": true},
                    {"in": "header", "name": "X-File-Name", "type": "string", "required": true, "description": "Percent-encoded file name"},
                    {"in": "header", "name": "X-File-Size", "type": "integer", "required": true},
                    {"in": "header", "name": "X-File-Mime-Type", "type": "string", "required": true},
                    {"in": "header", "name": "X-File-Sha256", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Attachment created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Size or checksum mismatch", "schema": {"$ref": "#/definitions/Envelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/article/remove_attachment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Articles"],
                "summary": "Detach a file from an article",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AttachmentIDRequest"}}],
                "responses": {"200": {"description": "Removed", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/resource/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Resources"],
                "summary": "Upload a public resource",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "header", "name": "X-File-Name", "type": "string", "required": true, "description": "Percent-encoded file name"},
                    {"in": "header", "name": "X-File-Size", "type": "integer", "required": true},
                    {"in": "header", "name": "X-File-Mime-Type", "type": "string", "required": true},
                    {"in": "header", "name": "X-File-Sha256", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "Resource created", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/resource/remove": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Resources"],
                "summary": "Remove a resource",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ResourceIDRequest"}}],
                "responses": {"200": {"description": "Removed", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/system/info": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["System"],
                "summary": "Runtime, database and cache information",
                "produces": ["application/json"],
                "responses": {"200": {"description": "System info", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/system/get_log_level": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["System"],
                "summary": "Current log level",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Log level", "schema": {"$ref": "#/definitions/LogLevel"}}}
            }
        },
        "/api/system/set_log_level": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["System"],
                "summary": "Change the log level",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LogLevel"}}],
                "responses": {
                    "200": {"description": "Changed", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Unknown level", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/system/get_shutdown_timeout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["System"],
                "summary": "Current graceful shutdown timeout in seconds",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Timeout", "schema": {"$ref": "#/definitions/ShutdownTimeout"}}}
            }
        },
        "/api/system/set_shutdown_timeout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["System"],
                "summary": "Change the graceful shutdown timeout",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ShutdownTimeout"}}],
                "responses": {"200": {"description": "Changed", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/articles/{article_id}/attachments/{attachment_id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download an attachment",
                "description": "Follows the article's access rules. Supports Range requests.",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"in": "path", "name": "article_id", "type": "string", "required": true},
                    {"in": "path", "name": "attachment_id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File content"},
                    "206": {"description": "Partial content"},
                    "404": {"description": "Not found or not visible"}
                }
            }
        },
        "/resources/{resource_id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a public resource",
                "produces": ["application/octet-stream"],
                "parameters": [{"in": "path", "name": "resource_id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File content"},
                    "206": {"description": "Partial content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/rss": {
            "get": {
                "tags": ["Feed"],
                "summary": "RSS 2.0 feed of the latest published articles",
                "produces": ["application/rss+xml"],
                "responses": {
                    "200": {"description": "Feed"},
                    "304": {"description": "Not modified"}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"$ref": "#/definitions/APIMeta"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "HTTP_NOT_FOUND"},
                "message": {"type": "string"},
                "details": {"type": "object"},
                "request_id": {"type": "string"}
            }
        },
        "APIMeta": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "duration_ms": {"type": "integer"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["password", "totp_code"],
            "properties": {
                "password": {"type": "string", "maxLength": 72},
                "totp_code": {"type": "string", "minLength": 6, "maxLength": 8}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "integer", "description": "Unix seconds"}
            }
        },
        "ArticleIDRequest": {
            "type": "object",
            "required": ["article_id"],
            "properties": {"article_id": {"type": "string"}}
        },
        "AttachmentIDRequest": {
            "type": "object",
            "required": ["article_id", "attachment_id"],
            "properties": {
                "article_id": {"type": "string"},
                "attachment_id": {"type": "string"}
            }
        },
        "ResourceIDRequest": {
            "type": "object",
            "required": ["resource_id"],
            "properties": {"resource_id": {"type": "string"}}
        },
        "ArticleInput": {
            "type": "object",
            "required": ["title", "status"],
            "properties": {
                "article_id": {"type": "string", "description": "Update only"},
                "title": {"type": "string"},
                "markdown_content": {"type": "string"},
                "password": {"type": "string", "minLength": 6, "maxLength": 32, "x-nullable": true},
                "status": {"type": "string", "enum": ["draft", "published"]}
            }
        },
        "SearchArticlesRequest": {
            "type": "object",
            "properties": {
                "full_text": {"type": "string", "maxLength": 200},
                "status": {"type": "string", "enum": ["draft", "published"]},
                "published_at_ge": {"type": "integer"},
                "published_at_lt": {"type": "integer"},
                "page": {"type": "integer"},
                "size": {"type": "integer"}
            }
        },
        "UnlockArticleRequest": {
            "type": "object",
            "required": ["article_id", "password"],
            "properties": {
                "article_id": {"type": "string"},
                "password": {"type": "string", "minLength": 6, "maxLength": 32}
            }
        },
        "LogLevel": {
            "type": "object",
            "required": ["level"],
            "properties": {
                "level": {"type": "string", "enum": ["trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "off"]}
            }
        },
        "ShutdownTimeout": {
            "type": "object",
            "required": ["timeout"],
            "properties": {
                "timeout": {"type": "integer", "minimum": 1, "maximum": 3600, "description": "Seconds"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin token from /api/auth/login, sent as 'Bearer <token>' or in the admin cookie.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Inkwell API",
	Description:      "Self-hosted blog engine: articles, password protected reading, attachments, resources and RSS.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
