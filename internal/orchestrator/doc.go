// Package orchestrator answers a travel query by walking a fixed sequence
// of states:
//
//	GatherSupplementary → GatherPrimaryEvidence → Synthesize → Done
//
// GatherSupplementary collects stored visitor notes for the attraction.
// GatherPrimaryEvidence keeps the qualified vector store documents and, only
// when none qualify, falls back to web search. Synthesize hands the
// accumulated evidence bundle to the language model.
//
// When an activity lookup is configured it runs concurrently with the two
// evidence states and is joined before Synthesize.
//
// Every collaborator degrades instead of failing, and a panic inside a state
// only empties that state's output, so Answer always returns text.
package orchestrator
