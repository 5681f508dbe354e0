// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the retrieval core to function:
//
//   - DocumentLoader: Turns one file into Documents
//   - LoaderRegistry: Selects the loader for a file
//   - PostProcessorPipeline: Chunks documents
//   - EmbeddingService: Generates vector embeddings for build and query
//   - VectorStore: Persisted similarity index (build once, load many)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model generation. Without it, ask/audit/evaluate are unavailable
//     and only raw retrieval is served.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//   - RuleSource: Compliance rules. Only the policy profile needs it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
