// Package docs registers the OpenAPI description of the HTTP transport.
//
// Regenerate with: swag init -g internal/transport/http/http.go -o docs
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
        "/transcript": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dialogue"],
                "summary": "Read the transcript",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Maximum number of lines (default all retained)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/message.Entry"}
                        }
                    },
                    "400": {"description": "Invalid limit", "schema": {"type": "string"}}
                }
            }
        },
        "/utterance": {
            "post": {
                "description": "Queues already-recognized text. It is heard on the next listen,\nexactly as if it had been spoken, so the wake phrase is still required while idle.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dialogue"],
                "summary": "Say something to the assistant",
                "parameters": [
                    {
                        "description": "Recognized text",
                        "name": "utterance",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.UtteranceRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/message.UtteranceResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"type": "string"}},
                    "429": {"description": "Queue full", "schema": {"type": "string"}},
                    "503": {"description": "Remote capture not enabled", "schema": {"type": "string"}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket that receives one message.Entry per line.",
                "tags": ["dialogue"],
                "summary": "Follow the transcript live",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "message.Entry": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["user", "assistant"]},
                "seq": {"type": "integer"},
                "session_id": {"type": "string"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "message.UtteranceRequest": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "message.UtteranceResponse": {
            "type": "object",
            "properties": {
                "pending": {"type": "integer"},
                "queued": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "hark remote control API",
	Description:      "Feed utterances to the voice assistant and follow its transcript.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
