// Package embeddings provides text embedding clients for email vectorization.
//
// The Client interface abstracts over embedding providers. Two implementations
// are included: an OpenAI client (also usable against OpenAI-compatible
// services via a custom base URL) and a local in-process client backed by
// go-embedeverything.
//
// Decorators compose around any Client:
//   - RetryClient retries transient provider failures with exponential backoff.
//   - CircuitBreakerClient stops calling a provider that keeps failing.
//
// Emails are embedded from a fixed composition of subject and body; see
// EmbedForEmail.
package embeddings
