package server

import "encoding/json"

// buildConfigInputSchema is the input schema for build_config.
var buildConfigInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"paths": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Source files in load order. Each entry may hold colon-separated paths."
		},
		"defaults": {
			"type": "object",
			"description": "Initial values, visible to every template and kept unless replaced",
			"additionalProperties": true
		},
		"overrides": {
			"type": "object",
			"description": "Values merged last. Not visible to templates.",
			"additionalProperties": true
		},
		"context": {
			"type": "object",
			"description": "Extra template variables that never appear in the result",
			"additionalProperties": true
		},
		"directive_key": {
			"type": "string",
			"description": "Reserved directive key (default: @configtpl)"
		},
		"no_directives": {
			"type": "boolean",
			"description": "Leave directive blocks in place instead of following them"
		}
	},
	"required": ["paths"],
	"additionalProperties": false
}`)

// buildConfigStringInputSchema is the input schema for build_config_string.
var buildConfigStringInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"input": {
			"type": "string",
			"description": "Templated document"
		},
		"format": {
			"type": "string",
			"description": "Document format: yaml, json, kdl or hcl (default: yaml)"
		},
		"work_dir": {
			"type": "string",
			"description": "Directory for include, readFile and cmd (default: server working directory)"
		},
		"defaults": {
			"type": "object",
			"additionalProperties": true
		},
		"overrides": {
			"type": "object",
			"additionalProperties": true
		},
		"context": {
			"type": "object",
			"additionalProperties": true
		}
	},
	"required": ["input"],
	"additionalProperties": false
}`)

// buildConfigOutputSchema is the output schema for the build tools.
var buildConfigOutputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"config": {"type": "object", "additionalProperties": true, "description": "Merged configuration"}
	},
	"required": ["config"],
	"additionalProperties": false
}`)

// templateFunctionsInputSchema is the input schema for template_functions.
var templateFunctionsInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "Search query (matches name, signature, description, tags)"
		},
		"category": {
			"type": "string",
			"description": "Filter by category: system, file, string, conversion, list, map, logic, math, encoding, crypto"
		},
		"limit": {
			"type": "integer",
			"description": "Max results (default: 10)"
		},
		"verbose": {
			"type": "boolean",
			"description": "Include description, example, returns (default: false)"
		},
		"list_categories": {
			"type": "boolean",
			"description": "Return category counts instead of functions"
		}
	},
	"additionalProperties": false
}`)

// templateFunctionHelpInputSchema is the input schema for template_function_help.
var templateFunctionHelpInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {
			"type": "string",
			"description": "Function name"
		}
	},
	"required": ["name"],
	"additionalProperties": false
}`)

// textOutputSchema is the output schema for tools returning formatted text.
var textOutputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"],
	"additionalProperties": false
}`)
