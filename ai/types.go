package ai

// Embedding providers.
const (
	ProviderFastEmbed = "fastembed"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

// DefaultFastEmbedModel is a small English model that runs on CPU.
const DefaultFastEmbedModel = "BAAI/bge-small-en-v1.5"
