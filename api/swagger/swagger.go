package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Council Appeal Portal API",
        "description": "Anonymous appeal intake, triage workflow and notifications for the student council.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Public", "description": "Anonymous submission and status checks"},
        {"name": "Appeals", "description": "Back-office triage"},
        {"name": "Attachments", "description": "Signed attachment downloads"},
        {"name": "Stats", "description": "Appeal statistics"},
        {"name": "Notifications", "description": "Own notification preferences"},
        {"name": "Content", "description": "News, guides and FAQ"},
        {"name": "Directions", "description": "Council directions"},
        {"name": "Roles", "description": "Council role grants"}
    ],
    "paths": {
        "/directions": {
            "get": {"tags": ["Directions"], "summary": "List directions", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Directions"], "summary": "Create a direction", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDirectionRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/content": {
            "get": {"tags": ["Content"], "summary": "List published content", "parameters": [{"name": "kind", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Content"], "summary": "Create content", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/content/{slug}": {
            "get": {"tags": ["Content"], "summary": "Get published content by slug", "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/content/{id}": {
            "put": {"tags": ["Content"], "summary": "Replace content", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Content"], "summary": "Delete content", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/manage/content": {
            "get": {"tags": ["Content"], "summary": "List all content including drafts", "parameters": [{"name": "kind", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/public/appeals": {
            "post": {"tags": ["Public"], "summary": "Submit an appeal", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAppealRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/public/appeals/status/{token}": {
            "get": {"tags": ["Public"], "summary": "Check appeal status by public token", "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/public/appeals/status/{token}/attachments": {
            "post": {"tags": ["Public"], "summary": "Attach a file to an appeal", "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}, {"name": "file", "in": "formData", "type": "file", "required": true}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/attachments/download": {
            "get": {"tags": ["Attachments"], "summary": "Download an attachment via signed token", "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}], "produces": ["application/octet-stream"], "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals": {
            "get": {"tags": ["Appeals"], "summary": "List appeals visible to the caller", "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "priority", "in": "query", "type": "string"}, {"name": "directionId", "in": "query", "type": "string"}, {"name": "assignedTo", "in": "query", "type": "string"}, {"name": "overdue", "in": "query", "type": "boolean"}, {"name": "search", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}": {
            "get": {"tags": ["Appeals"], "summary": "Get appeal detail", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/history": {
            "get": {"tags": ["Appeals"], "summary": "Appeal history", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/status": {
            "patch": {"tags": ["Appeals"], "summary": "Change appeal status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeStatusRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/assignee": {
            "patch": {"tags": ["Appeals"], "summary": "Assign or unassign an appeal", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/priority": {
            "patch": {"tags": ["Appeals"], "summary": "Change appeal priority", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PriorityRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/deadline": {
            "patch": {"tags": ["Appeals"], "summary": "Set or clear the appeal deadline", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeadlineRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/comments": {
            "post": {"tags": ["Appeals"], "summary": "Comment on an appeal", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/attachments": {
            "get": {"tags": ["Appeals"], "summary": "List appeal attachments", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/appeals/{id}/attachments/{attachmentId}/url": {
            "get": {"tags": ["Appeals"], "summary": "Issue a signed download link", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "attachmentId", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/system/metrics": {
            "get": {"tags": ["System"], "summary": "In-process counters snapshot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/overview": {
            "get": {"tags": ["Stats"], "summary": "Appeal statistics overview", "parameters": [{"name": "from", "in": "query", "type": "string"}, {"name": "to", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/report.pdf": {
            "get": {"tags": ["Stats"], "summary": "Appeal statistics as PDF", "parameters": [{"name": "from", "in": "query", "type": "string"}, {"name": "to", "in": "query", "type": "string"}], "produces": ["application/pdf"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/me/notification-settings": {
            "get": {"tags": ["Notifications"], "summary": "Get own notification settings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Notifications"], "summary": "Replace own notification settings", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateNotificationSettingsRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/me/notification-logs": {
            "get": {"tags": ["Notifications"], "summary": "List own delivery log", "parameters": [{"name": "channel", "in": "query", "type": "string"}, {"name": "limit", "in": "query", "type": "integer"}, {"name": "offset", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/roles": {
            "get": {"tags": ["Roles"], "summary": "List role grants", "parameters": [{"name": "userId", "in": "query", "type": "string"}, {"name": "directionId", "in": "query", "type": "string"}, {"name": "role", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Roles"], "summary": "Grant a role", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GrantRoleRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/roles/{id}": {
            "delete": {"tags": ["Roles"], "summary": "Revoke a role grant", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "CreateAppealRequest": {"type": "object", "properties": {"title": {"type": "string"}, "description": {"type": "string"}, "is_anonymous": {"type": "boolean"}, "contact": {"type": "string"}, "contact_type": {"type": "string", "enum": ["email", "telegram"]}, "direction_id": {"type": "string"}, "institute": {"type": "string"}}, "required": ["title", "description"]},
        "ChangeStatusRequest": {"type": "object", "properties": {"status": {"type": "string", "enum": ["new", "in_progress", "waiting", "closed"]}}, "required": ["status"]},
        "AssignRequest": {"type": "object", "properties": {"assignee_id": {"type": "string", "x-nullable": true}}},
        "PriorityRequest": {"type": "object", "properties": {"priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}}, "required": ["priority"]},
        "DeadlineRequest": {"type": "object", "properties": {"deadline": {"type": "string", "x-nullable": true, "format": "date"}}},
        "CommentRequest": {"type": "object", "properties": {"body": {"type": "string"}}, "required": ["body"]},
        "ContentRequest": {"type": "object", "properties": {"kind": {"type": "string", "enum": ["news", "guide", "faq"]}, "slug": {"type": "string"}, "title": {"type": "string"}, "body": {"type": "string"}, "published": {"type": "boolean"}}, "required": ["kind", "slug", "title", "body"]},
        "CreateDirectionRequest": {"type": "object", "properties": {"name": {"type": "string"}, "slug": {"type": "string"}, "description": {"type": "string"}}, "required": ["name", "slug"]},
        "GrantRoleRequest": {"type": "object", "properties": {"user_id": {"type": "string"}, "role": {"type": "string", "enum": ["member", "lead", "board", "staff"]}, "direction_id": {"type": "string"}}, "required": ["user_id", "role"]},
        "UpdateNotificationSettingsRequest": {"type": "object", "properties": {"email_enabled": {"type": "boolean"}, "email_appeal_status": {"type": "boolean"}, "email_appeal_assigned": {"type": "boolean"}, "email_appeal_comment": {"type": "boolean"}, "email_appeal_new": {"type": "boolean"}, "email_appeal_overdue": {"type": "boolean"}, "email_appeal_escalated": {"type": "boolean"}, "push_enabled": {"type": "boolean"}, "push_appeal_status": {"type": "boolean"}, "push_appeal_assigned": {"type": "boolean"}, "push_appeal_comment": {"type": "boolean"}, "push_appeal_new": {"type": "boolean"}, "push_appeal_overdue": {"type": "boolean"}, "push_appeal_escalated": {"type": "boolean"}, "telegram_enabled": {"type": "boolean"}, "telegram_appeal_status": {"type": "boolean"}, "telegram_appeal_assigned": {"type": "boolean"}, "telegram_appeal_comment": {"type": "boolean"}, "telegram_appeal_new": {"type": "boolean"}, "telegram_appeal_overdue": {"type": "boolean"}, "telegram_appeal_escalated": {"type": "boolean"}, "push_subscription": {"type": "string"}, "telegram_chat_id": {"type": "string"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
