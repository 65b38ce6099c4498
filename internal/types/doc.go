/*
Package types defines the data model shared between the API client,
the orchestration layer, and both front ends.

# Overview

The types mirror the backend's JSON contract:
  - AnalysisRequest / BatchRequest: request bodies
  - AnalysisResult: one analysis (sentiment, score, intensity, details)
  - ErrorResponse: the {"detail": ...} error body
  - HealthStatus: the health probe response
  - RealtimeRequest / RealtimeResponse: WebSocket frames

# Detail Ordering

The per-emotion breakdown is decoded into the ordered Details slice
rather than a map. Go maps randomize iteration order, but the rendered
detail lines must follow the order the backend emitted, so Details
implements json.Unmarshaler over the raw token stream.
*/
package types
