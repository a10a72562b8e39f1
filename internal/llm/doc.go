// Package llm provides chat clients for the AI business advisor. It supports OpenAI,
// Anthropic, Gemini and a local Ollama server, plus an offline rule-based client, with
// retry logic, rate limiting and response caching layered on top by Advisor.
package llm
