// Package llm implements the categorization-engine boundary: providers
// for the supported model APIs, prompt construction, rate limiting, and
// best-effort parsing of the engine's free-form responses.
package llm
