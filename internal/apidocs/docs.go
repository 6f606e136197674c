// Package apidocs registers the OpenAPI document served by the swagger UI.
// The template is maintained by hand alongside the handler annotations in
// internal/httpapi.
package apidocs

import (
	"sync"

	"github.com/swaggo/swag"
)

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
        "/models": {"get": {"tags": ["models"], "summary": "List models", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}},
                          "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/models/{id}": {"get": {"tags": ["models"], "summary": "Get one model", "produces": ["application/json"],
            "parameters": [{"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Model"}},
                          "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/models/{id}/load": {"post": {"tags": ["models"], "summary": "Load a model into memory", "produces": ["application/json"],
            "parameters": [{"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ActionResponse"}},
                          "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/models/{id}/unload": {"post": {"tags": ["models"], "summary": "Unload a model from memory", "produces": ["application/json"],
            "parameters": [{"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ActionResponse"}},
                          "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/config": {
            "get": {"tags": ["config"], "summary": "Get eviction configuration", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ServerConfig"}}}},
            "patch": {"tags": ["config"], "summary": "Patch eviction configuration", "description": "Only fields present in the body are changed.",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Partial configuration", "name": "patch", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ServerConfigPatch"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ServerConfig"}},
                              "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/status": {"get": {"tags": ["status"], "summary": "Server runtime status", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ServerStatus"}}}}},
        "/training/jobs": {"get": {"tags": ["training"], "summary": "List fine-tuning jobs", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TrainingJobsResponse"}}}}}
    },
    "definitions": {
        "types.Model": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "status": {"type": "string", "enum": ["loaded", "unloaded"]}}},
        "types.ModelsResponse": {"type": "object", "properties": {
            "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}},
        "types.EvictionConfig": {"type": "object", "properties": {
            "ttlSeconds": {"type": "integer"}, "autoEvict": {"type": "boolean"}, "maxLoadedModels": {"type": "integer"}}},
        "types.ServerConfig": {"type": "object", "properties": {
            "eviction": {"$ref": "#/definitions/types.EvictionConfig"}}},
        "types.ServerConfigPatch": {"type": "object", "properties": {
            "eviction": {"$ref": "#/definitions/types.EvictionConfig"}}},
        "types.ModelRuntimeStatus": {"type": "object", "properties": {
            "modelId": {"type": "string"}, "state": {"type": "string"}, "activeRequests": {"type": "integer"}}},
        "types.ServerStatus": {"type": "object", "properties": {
            "uptimeSeconds": {"type": "integer"}, "loadedCount": {"type": "integer"}, "memoryUsageBytes": {"type": "integer"},
            "models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelRuntimeStatus"}}}},
        "types.TrainingJob": {"type": "object", "properties": {
            "id": {"type": "string"}, "modelId": {"type": "string"},
            "status": {"type": "string", "enum": ["queued", "running", "completed", "failed"]}, "progressPercent": {"type": "integer"}}},
        "types.TrainingJobsResponse": {"type": "object", "properties": {
            "jobs": {"type": "array", "items": {"$ref": "#/definitions/types.TrainingJob"}}}},
        "types.ActionResponse": {"type": "object", "properties": {
            "modelId": {"type": "string"}, "action": {"type": "string"}, "ok": {"type": "boolean"}}},
        "types.ErrorResponse": {"type": "object", "properties": {
            "error": {"type": "string"}, "code": {"type": "integer"}, "kind": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "lmsbridge API",
	Description:      "HTTP facade over LM Studio with CLI fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var once sync.Once

// Register makes the document available to swag.ReadDoc. Safe to call repeatedly.
func Register() {
	once.Do(func() { swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo) })
}
