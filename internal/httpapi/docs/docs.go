// Package docs registers the OpenAPI document served by the swagger UI.
// Regenerate with `swag init -g cmd/modelbridge/docs.go -o internal/httpapi/docs`.
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
        "/call": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bridge"],
                "summary": "Call a bridge method",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CallRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/types.Reply"}}
                }
            }
        },
        "/call/{method}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bridge"],
                "summary": "Call a bridge method by path",
                "parameters": [
                    {"type": "string", "name": "method", "in": "path", "required": true},
                    {"name": "arguments", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/types.Reply"}}
                }
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List model files in the models directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/modules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "List live modules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModulesResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "Load a model file",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.Reply"}}
                }
            }
        },
        "/modules/{handle}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "Destroy a module",
                "parameters": [
                    {"type": "integer", "name": "handle", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Reply"}}
                }
            }
        },
        "/modules/{handle}/forward": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "Run a loaded module",
                "parameters": [
                    {"type": "integer", "name": "handle", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Reply"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.Reply"}}
                }
            }
        }
    },
    "definitions": {
        "types.CallRequest": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "example": "load"},
                "arguments": {"type": "object", "additionalProperties": true}
            }
        },
        "types.Reply": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "value": {},
                "error": {"$ref": "#/definitions/types.ReplyError"},
                "method": {"type": "string", "example": "reset"}
            }
        },
        "types.ReplyError": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "UnknownHandle"},
                "message": {"type": "string", "example": "unknown handle: 7"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.ModelFile": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "mobilenet_v2.onnx"},
                "path": {"type": "string", "example": "/home/user/models/mobilenet_v2.onnx"},
                "size_bytes": {"type": "integer", "example": 14000000}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelFile"}}
            }
        },
        "types.ModuleStatus": {
            "type": "object",
            "properties": {
                "handle": {"type": "integer", "example": 3},
                "path": {"type": "string"},
                "loaded_at_unix": {"type": "integer"},
                "forwards": {"type": "integer"},
                "inflight": {"type": "integer"}
            }
        },
        "types.ModulesResponse": {
            "type": "object",
            "properties": {
                "modules": {"type": "array", "items": {"$ref": "#/definitions/types.ModuleStatus"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "modelbridge API",
	Description:      "Load serialized models, run them on tensors and release them by handle.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
