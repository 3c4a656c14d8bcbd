// Package logging provides structured logging for tripd.
//
// It wraps zap with:
//   - stdout output (JSON or console) and an optional OpenTelemetry bridge
//   - context field injection (trace_id, span_id, request.id, query.id)
//   - redaction of credential-shaped keys and values (Groq, Google,
//     HuggingFace keys, bearer tokens)
//   - sampling below error level
//
// Components take a *zap.Logger. Build one with NewLogger and hand out
// Underlying():
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithQueryID(ctx, id)
//	logger.Info(ctx, "query received")
package logging
