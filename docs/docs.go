// Package docs registers the OpenAPI document of the shader run history API.
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
        "/runs": {
            "get": {
                "description": "Get a list of all recorded runs with their status",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "responses": {
                    "200": {"description": "List of runs", "schema": {"type": "array", "items": {"type": "object"}}},
                    "500": {"description": "Internal server error", "schema": {"type": "object"}}
                }
            },
            "post": {
                "description": "Run the shader pipelines of the server's shader directory and record the result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Start a run",
                "parameters": [
                    {"description": "Run options", "name": "run", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RunRequest"}}
                ],
                "responses": {
                    "200": {"description": "Run finished", "schema": {"type": "object"}},
                    "400": {"description": "Invalid request payload", "schema": {"type": "object"}},
                    "500": {"description": "Internal server error", "schema": {"type": "object"}}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "description": "Retrieve the spec and status of a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Run details", "schema": {"type": "object"}},
                    "400": {"description": "Invalid run ID", "schema": {"type": "object"}},
                    "404": {"description": "Run not found", "schema": {"type": "object"}}
                }
            }
        },
        "/runs/{id}/pipelines": {
            "get": {
                "description": "Retrieve the outcome of every pipeline of a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run pipelines",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Pipeline results", "schema": {"type": "object"}},
                    "500": {"description": "Internal server error", "schema": {"type": "object"}}
                }
            }
        },
        "/runs/{id}/bindings": {
            "get": {
                "description": "Retrieve the reported descriptor bindings of a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run bindings",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Only bindings of this pipeline", "name": "pipeline", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Bindings", "schema": {"type": "object"}},
                    "500": {"description": "Internal server error", "schema": {"type": "object"}}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "description": "Retrieve all errors recorded during a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Run errors", "schema": {"type": "object"}},
                    "500": {"description": "Internal server error", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "handler.RunRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["first-stage", "merge-union", "merge-strict"], "example": "first-stage"},
                "fail_fast": {"type": "boolean"},
                "write_reflection": {"type": "boolean"},
                "timeout": {"type": "string", "example": "30s"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Shader Reflection History API",
	Description:      "Browse shader binding layouts recorded by shaderc runs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
