// Package openai wraps the two OpenAI endpoints the pipeline depends on:
// audio transcription and chat-based transcript polishing.
//
// Each call is a single attempt with no internal retries; callers decide
// what a failure means for the entry being processed. The polishing call
// asks the model for a strict JSON payload and decodes it tolerantly,
// stripping code fences and surrounding prose when the model misbehaves.
package openai
