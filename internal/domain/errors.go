package domain

import "errors"

var (
	// ErrModerationUnavailable marks a transient safety classifier failure.
	// Callers may retry; deterministic classifier rejections never wrap it.
	ErrModerationUnavailable = errors.New("moderation unavailable")
	// ErrRewriteFailed signals a rewriting service failure (recoverable).
	ErrRewriteFailed = errors.New("rewrite failed")
	// ErrNoEvidence signals that every fallback stage returned zero documents.
	ErrNoEvidence = errors.New("no evidence")
	// ErrRetrievalService signals a vector store connectivity failure.
	ErrRetrievalService = errors.New("retrieval service error")
	// ErrGenerationService signals a generation provider failure.
	ErrGenerationService = errors.New("generation service error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnknownCollection signals a route decision naming an unconfigured collection.
	ErrUnknownCollection = errors.New("unknown collection")
)
